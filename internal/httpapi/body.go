package httpapi

import (
	"encoding/json"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// parsedBody is a request body normalized across the three shapes the
// provider and mobile clients actually send: JSON, urlencoded form, and
// a raw query string. Single-value lists collapse to scalars.
type parsedBody struct {
	values map[string]any
	raw    string
}

func parseBody(c *gin.Context) parsedBody {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return parsedBody{values: map[string]any{}}
	}
	raw := string(data)

	ct := c.ContentType()
	if strings.Contains(ct, "application/json") {
		var m map[string]any
		if err := json.Unmarshal(data, &m); err == nil && m != nil {
			return parsedBody{values: m, raw: raw}
		}
	}

	// Form-encoded or bare query-string payloads parse the same way.
	values := map[string]any{}
	if parsed, err := url.ParseQuery(raw); err == nil {
		for k, v := range parsed {
			if len(v) == 1 {
				values[k] = v[0]
			} else {
				values[k] = v
			}
		}
	}
	return parsedBody{values: values, raw: raw}
}

// String reads a key as text, tolerating JSON numbers and booleans.
func (b parsedBody) String(key string) string {
	switch v := b.values[key].(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// Bool reads a key as a boolean. The second return value reports
// whether the key was present and interpretable.
func (b parsedBody) Bool(key string) (bool, bool) {
	switch v := b.values[key].(type) {
	case bool:
		return v, true
	case string:
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return false, false
		}
		return parsed, true
	default:
		return false, false
	}
}

func (b parsedBody) Has(key string) bool {
	_, ok := b.values[key]
	return ok
}
