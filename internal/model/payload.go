package model

import (
	"bytes"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

var (
	// ErrEmptyPayload means the body was missing, null or an empty object.
	ErrEmptyPayload = errors.New("no data provided")

	// ErrInvalidPayload means the body was not a JSON object.
	ErrInvalidPayload = errors.New("invalid JSON body")

	// ErrNotANumber is returned by the numeric field parsers.
	ErrNotANumber = errors.New("not a number")
)

var jsonNull = []byte("null")

// MoviePayload is a decoded request body before validation.
//
// Each field keeps its raw JSON so the three cases a client can send stay
// distinguishable: absent (nil), explicit null, and a value of any type.
type MoviePayload struct {
	Title   json.RawMessage
	Genre   json.RawMessage
	Year    json.RawMessage
	Rating  json.RawMessage
	Watched json.RawMessage
	Notes   json.RawMessage
}

// DecodeMoviePayload parses a request body into a MoviePayload.
//
// Unknown keys are ignored.
func DecodeMoviePayload(body []byte) (*MoviePayload, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, jsonNull) {
		return nil, ErrEmptyPayload
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, ErrInvalidPayload
	}
	if len(raw) == 0 {
		return nil, ErrEmptyPayload
	}

	return &MoviePayload{
		Title:   raw["title"],
		Genre:   raw["genre"],
		Year:    raw["year"],
		Rating:  raw["rating"],
		Watched: raw["watched"],
		Notes:   raw["notes"],
	}, nil
}

// Present reports whether the key was sent at all, null included.
func Present(raw json.RawMessage) bool {
	return raw != nil
}

// IsNull reports whether the key was sent with an explicit null.
func IsNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), jsonNull)
}

// StringValue decodes a JSON string. ok is false for null and for any
// other JSON type.
func StringValue(raw json.RawMessage) (string, bool) {
	if !Present(raw) || IsNull(raw) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// BoolValue decodes a JSON boolean. ok is false for any other JSON type.
func BoolValue(raw json.RawMessage) (bool, bool) {
	trimmed := bytes.TrimSpace(raw)
	switch {
	case bytes.Equal(trimmed, []byte("true")):
		return true, true
	case bytes.Equal(trimmed, []byte("false")):
		return false, true
	default:
		return false, false
	}
}

// ParseYear reads a year from a JSON number, a boolean (1 or 0) or a string
// holding an integer. Fractional numbers are truncated toward zero and
// values too large to hold are clamped so the range check rejects them.
func ParseYear(raw json.RawMessage) (int64, error) {
	if s, ok := StringValue(raw); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			if errors.Is(err, strconv.ErrRange) {
				return n, nil
			}
			return 0, ErrNotANumber
		}
		return n, nil
	}

	f, err := numberValue(raw)
	if err != nil {
		return 0, err
	}
	f = math.Trunc(f)
	switch {
	case f > math.MaxInt32:
		return math.MaxInt32, nil
	case f < math.MinInt32:
		return math.MinInt32, nil
	}
	return int64(f), nil
}

// ParseRating reads a float from a JSON number, a boolean (1 or 0) or a
// numeric string. Infinities are returned as is; NaN is not a number.
func ParseRating(raw json.RawMessage) (float64, error) {
	if s, ok := StringValue(raw); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return 0, ErrNotANumber
		}
		if math.IsNaN(f) {
			return 0, ErrNotANumber
		}
		return f, nil
	}
	return numberValue(raw)
}

// numberValue decodes a JSON number or boolean. Numbers beyond float64
// come back as an infinity.
func numberValue(raw json.RawMessage) (float64, error) {
	if b, ok := BoolValue(raw); ok {
		if b {
			return 1, nil
		}
		return 0, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, ErrNotANumber
	}
	f, err := n.Float64()
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, ErrNotANumber
	}
	return f, nil
}

// Fields converts a validated payload into the typed mutable fields,
// substituting defaults for everything that is absent or null.
//
// Call it only after the payload passed validation; values that do not
// parse fall back to their defaults.
func (p *MoviePayload) Fields() MovieFields {
	fields := MovieFields{}

	fields.Title, _ = StringValue(p.Title)
	if Present(p.Genre) && !IsNull(p.Genre) {
		fields.Genre, _ = StringValue(p.Genre)
	}
	if Present(p.Notes) && !IsNull(p.Notes) {
		fields.Notes, _ = StringValue(p.Notes)
	}
	if Present(p.Watched) && !IsNull(p.Watched) {
		fields.Watched, _ = BoolValue(p.Watched)
	}
	if Present(p.Year) && !IsNull(p.Year) {
		if year, err := ParseYear(p.Year); err == nil {
			y := int(year)
			fields.Year = &y
		}
	}
	if Present(p.Rating) && !IsNull(p.Rating) {
		if rating, err := ParseRating(p.Rating); err == nil {
			fields.Rating = &rating
		}
	}

	return fields
}
