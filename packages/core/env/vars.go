package env

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

var (
	// ErrEnvFile wraps failures reading or parsing a .env file.
	ErrEnvFile = errors.New("env file")
	// ErrInvalidVariable is returned for a pair that is not NAME=value.
	ErrInvalidVariable = errors.New("invalid variable")
)

// ReadEnvFile parses a .env file into template variables. Values may use
// ${NAME} to refer to keys defined earlier in the file or to the process
// environment. Nothing is exported to the environment.
func ReadEnvFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEnvFile, err)
	}
	defer f.Close()

	vars, err := godotenv.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrEnvFile, path, err)
	}
	return vars, nil
}

// ParseVars converts NAME=value pairs into a variable map. A repeated name
// keeps its last value.
func ParseVars(pairs []string) (map[string]string, error) {
	vars := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			return nil, fmt.Errorf("%w %q, expected NAME=value", ErrInvalidVariable, pair)
		}
		if strings.ContainsAny(key, "{}()") {
			return nil, fmt.Errorf("%w %q, name cannot contain braces or parentheses", ErrInvalidVariable, pair)
		}
		vars[key] = value
	}
	return vars, nil
}

// LoadVariables builds the variables a request can reference. The env file
// is read first and pairs override it.
func LoadVariables(envFile string, pairs []string) (map[string]string, error) {
	vars := make(map[string]string)
	if envFile != "" {
		fileVars, err := ReadEnvFile(envFile)
		if err != nil {
			return nil, err
		}
		maps.Copy(vars, fileVars)
	}

	pairVars, err := ParseVars(pairs)
	if err != nil {
		return nil, err
	}
	maps.Copy(vars, pairVars)
	return vars, nil
}
