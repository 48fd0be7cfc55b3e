// Package i18n is the en/tr message catalog used for notices, errors and navigation labels.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

const (
	English = "en"
	Turkish = "tr"
)

// Message keys.
const (
	KeySessionExpired            = "sessionExpired"
	KeyGenericFailure            = "genericFailure"
	KeyLoginRejected             = "loginRejected"
	KeyLoginNoResponse           = "loginNoResponse"
	KeyLoginSetup                = "loginSetup"
	KeyCompanyIDError            = "companyIdError"
	KeyNoStoreSelected           = "noStoreSelected"
	KeyTelegramPairingLinkOpened = "telegramPairingLinkOpened"
	KeyFailedToGetTelegramLink   = "failedToGetTelegramLink"
	KeyInvalidForm               = "invalidForm"
)

var entries = map[string]map[string]string{
	English: {
		KeySessionExpired:            "Your session has expired. Please log in again.",
		KeyGenericFailure:            "Something went wrong. Please try again later.",
		KeyLoginRejected:             "Invalid username or password.",
		KeyLoginNoResponse:           "No response from server.",
		KeyLoginSetup:                "Error setting up the login request.",
		KeyCompanyIDError:            "Company could not be found.",
		KeyNoStoreSelected:           "Please select a store first.",
		KeyTelegramPairingLinkOpened: "Telegram pairing link opened.",
		KeyFailedToGetTelegramLink:   "Failed to get Telegram link.",
		KeyInvalidForm:               "Please fill in all required fields.",

		"home":        "Home",
		"stores":      "Stores",
		"companies":   "Companies",
		"categories":  "Categories",
		"products":    "Products",
		"dashboard":   "Dashboard",
		"team":        "Team",
		"newStore":    "New Store",
		"newEmployee": "New Employee",
		"newBoss":     "New Boss",
	},
	Turkish: {
		KeySessionExpired:            "Oturumunuzun süresi doldu. Lütfen tekrar giriş yapın.",
		KeyGenericFailure:            "Bir şeyler ters gitti. Lütfen daha sonra tekrar deneyin.",
		KeyLoginRejected:             "Kullanıcı adı veya şifre hatalı.",
		KeyLoginNoResponse:           "Sunucudan yanıt alınamadı.",
		KeyLoginSetup:                "Giriş isteği hazırlanırken hata oluştu.",
		KeyCompanyIDError:            "Şirket bulunamadı.",
		KeyNoStoreSelected:           "Lütfen önce bir mağaza seçin.",
		KeyInvalidForm:               "Lütfen tüm zorunlu alanları doldurun.",
		KeyTelegramPairingLinkOpened: "Telegram eşleştirme bağlantısı açıldı.",
		KeyFailedToGetTelegramLink:   "Telegram bağlantısı alınamadı.",

		"home":        "Ana Sayfa",
		"stores":      "Mağazalar",
		"companies":   "Şirketler",
		"categories":  "Kategoriler",
		"products":    "Ürünler",
		"dashboard":   "Panel",
		"team":        "Ekip",
		"newStore":    "Yeni Mağaza",
		"newEmployee": "Yeni Çalışan",
		"newBoss":     "Yeni Patron",
	},
}

var (
	cat     catalog.Catalog
	matcher = language.NewMatcher([]language.Tag{language.English, language.Turkish})
)

func init() {
	cat = build(entries)
}

// build registers every English key for every language, using the translation when present.
func build(table map[string]map[string]string) catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for lang, msgs := range table {
		tag := language.MustParse(lang)
		for key, msg := range table[English] {
			if translated, ok := msgs[key]; ok {
				msg = translated
			}
			if err := b.SetString(tag, key, msg); err != nil {
				panic(err)
			}
		}
	}
	return b
}

// Normalize maps user input (a code or an Accept-Language value) to en or tr.
// Anything unrecognized is English.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return English
	}
	_, idx := language.MatchStrings(matcher, s)
	if idx == 1 {
		return Turkish
	}
	return English
}

// Supported reports whether lang is exactly one of the catalog languages.
func Supported(lang string) bool {
	return lang == English || lang == Turkish
}

// T translates key into lang, falling back to English and finally to the key itself.
func T(lang, key string) string {
	return translate(cat, lang, key)
}

func translate(c catalog.Catalog, lang, key string) string {
	p := message.NewPrinter(language.MustParse(Normalize(lang)), message.Catalog(c))
	return p.Sprintf(key)
}
