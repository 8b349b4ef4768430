package api

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

var (
	dataPath    = jp.C("data")
	successPath = jp.C("success")
	statusPath  = jp.C("status")
	messagePath = jp.C("message")
	errorPath   = jp.C("error")
)

// decodeEnvelope parses a response body and returns its data node once the
// envelope reports success. The flag is either a boolean "success" or a
// "status" that is true or one of "success"/"ok".
func decodeEnvelope(raw []byte) (any, error) {
	doc, err := oj.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if _, ok := doc.(map[string]any); !ok {
		return nil, fmt.Errorf("decoding response: expected object, got %T", doc)
	}
	if !succeeded(doc) {
		if msg := messageOf(doc); msg != "" {
			return nil, fmt.Errorf("%w: %s", ErrUnsuccessful, msg)
		}
		return nil, ErrUnsuccessful
	}
	return dataPath.First(doc), nil
}

func succeeded(doc any) bool {
	for _, x := range []jp.Expr{successPath, statusPath} {
		switch v := x.First(doc).(type) {
		case bool:
			if v {
				return true
			}
		case string:
			s := strings.ToLower(v)
			if s == "success" || s == "ok" {
				return true
			}
		}
	}
	return false
}

func messageOf(doc any) string {
	for _, x := range []jp.Expr{messagePath, errorPath} {
		if s, ok := x.First(doc).(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// envelopeMessage extracts a message from an error response body, if any.
func envelopeMessage(raw []byte) string {
	doc, err := oj.Parse(raw)
	if err != nil {
		return ""
	}
	return messageOf(doc)
}

// toInt64 accepts the numeric shapes a JSON id can arrive in.
func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || math.IsNaN(n) {
			return 0, false
		}
		return int64(n), true
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return i, err == nil
	}
	return 0, false
}

func stringOf(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
