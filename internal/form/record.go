// Package form binds record views to per-doctype controllers.
//
// A record view is anything that can show a record and offer actions on it:
// the desk HTTP surface renders one on the server, deskctl renders one in a
// terminal. Controllers subscribe to view lifecycle events through a Registry
// and receive everything they touch (view handle, remote caller, translator)
// as explicit dependencies.
package form

import (
	"encoding/json"
	"strings"
)

// Record is the snapshot of one document as shown in a view
type Record struct {
	Doctype   string                 `json:"doctype"`
	Name      string                 `json:"name"`
	DocStatus int                    `json:"docstatus"`
	Fields    map[string]interface{} `json:"fields"`
}

// Get returns the raw value of field, or nil when absent
func (r *Record) Get(field string) interface{} {
	if r == nil || r.Fields == nil {
		return nil
	}
	return r.Fields[field]
}

// Truthy reports whether field holds a truthy value
func (r *Record) Truthy(field string) bool {
	return Truthy(r.Get(field))
}

// Truthy applies the view layer's notion of truthiness: nil, "", zero numbers,
// false and empty collections are falsy.
func Truthy(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case int:
		return val != 0
	case int64:
		return val != 0
	case float64:
		return val != 0
	case json.Number:
		return strings.Trim(string(val), "0.") != ""
	case []interface{}:
		return len(val) > 0
	case map[string]interface{}:
		return len(val) > 0
	default:
		return true
	}
}
