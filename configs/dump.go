package configs

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/tidwall/pretty"
)

// JToString marshals v to a compact JSON string, mirroring FC's
// configs.JToString. Used for debug snapshot dumps, never for the wire
// protocol (the wire protocol is a plain text line format, not JSON).
func JToString(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return string(b)
}

// JPrint pretty-prints v as indented JSON to stdout, mirroring FC's
// configs.JPrint but using tidwall/pretty for the formatting instead of
// hand-rolled indentation. Built on JToString so both of this package's
// JSON helpers share one marshal path.
func JPrint(v interface{}) {
	fmt.Println(string(pretty.Pretty([]byte(JToString(v)))))
}
