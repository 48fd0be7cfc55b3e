// Package selection holds the per-session store and company the user is working in.
package selection

import "fmt"

// AbsentMarker is written into a slot on clear. A missing key and the marker both read as absent.
const AbsentMarker = "null"

func StoreKey(sid string) string {
	return fmt.Sprintf("session:%s:globalStoreId", sid)
}

func CompanyKey(sid string) string {
	return fmt.Sprintf("session:%s:globalCompanyId", sid)
}
