package env

import (
	"encoding/base64"
	"math/rand/v2"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Func produces a template value from its string arguments.
type Func func(args []string) (string, error)

var funcCallPattern = regexp.MustCompile(`^(\w+)\((.*)\)$`)

func defaultFuncs(clock func() time.Time) map[string]Func {
	return map[string]Func{
		"uuid": func([]string) (string, error) {
			return uuid.NewString(), nil
		},
		"now": func([]string) (string, error) {
			return clock().UTC().Format(time.RFC3339), nil
		},
		"timestamp": func([]string) (string, error) {
			return strconv.FormatInt(clock().Unix(), 10), nil
		},
		"timestampMs": func([]string) (string, error) {
			return strconv.FormatInt(clock().UnixMilli(), 10), nil
		},
		"date": func(args []string) (string, error) {
			layout := "2006-01-02"
			if len(args) > 0 {
				layout = args[0]
			}
			return clock().UTC().Format(layout), nil
		},
		"random": funcRandom,
		"base64": func(args []string) (string, error) {
			return base64.StdEncoding.EncodeToString([]byte(firstArg(args))), nil
		},
		"urlEncode": func(args []string) (string, error) {
			return url.QueryEscape(firstArg(args)), nil
		},
	}
}

func funcRandom(args []string) (string, error) {
	lo, hi := 0, 100
	if len(args) >= 2 {
		var err error
		if lo, err = strconv.Atoi(args[0]); err != nil {
			return "", err
		}
		if hi, err = strconv.Atoi(args[1]); err != nil {
			return "", err
		}
	}
	if hi < lo {
		lo, hi = hi, lo
	}
	return strconv.Itoa(rand.IntN(hi-lo+1) + lo), nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// parseCall splits "name(a, 'b, c')" into the function name and arguments.
func parseCall(expr string) (string, []string, bool) {
	m := funcCallPattern.FindStringSubmatch(expr)
	if m == nil {
		return "", nil, false
	}
	if m[2] == "" {
		return m[1], nil, true
	}

	var args []string
	var current strings.Builder
	var quote byte
	for i := 0; i < len(m[2]); i++ {
		ch := m[2][i]
		switch {
		case quote == 0 && (ch == '"' || ch == '\''):
			quote = ch
		case quote != 0 && ch == quote:
			quote = 0
		case quote == 0 && ch == ',':
			args = append(args, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}
	args = append(args, strings.TrimSpace(current.String()))
	return m[1], args, true
}
