package web

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
)

// Bounds is an inclusive range for an integer query parameter.
type Bounds struct {
	Min, Max int32
}

// NonNegative accepts 0 and up.
var NonNegative = Bounds{Min: 0, Max: math.MaxInt32}

// QueryInt32 reads the optional integer query parameter key. A missing value
// yields def. A malformed or out of range value gets a 400 JSON error and false.
func QueryInt32(w http.ResponseWriter, r *http.Request, logger *slog.Logger, key string, def int32, b Bounds) (int32, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, true
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || int32(v) < b.Min || int32(v) > b.Max {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid %s number: %s", key, raw))
		return 0, false
	}
	return int32(v), true
}
