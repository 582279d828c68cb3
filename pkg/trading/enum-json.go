package trading

import (
	"strconv"

	"github.com/pkg/errors"
)

func quoteName(name string) []byte {
	return []byte(strconv.Quote(name))
}

// unmarshalName resolves a quoted enum name. Gates that predate names send a
// bare number, it is accepted below limit.
func unmarshalName(data []byte, names []string, limit int, kind string) (int, error) {
	if len(data) > 0 && data[0] == '"' {
		value, err := strconv.Unquote(string(data))
		if err != nil {
			return 0, errors.WithMessage(err, "invalid "+kind)
		}
		return nameIndex(value, names, kind)
	}

	i, err := strconv.Atoi(string(data))
	if err != nil || i < 0 || i >= limit {
		return 0, errors.New("unsupported " + kind + ": " + string(data))
	}
	return i, nil
}

func nameIndex(value string, names []string, kind string) (int, error) {
	for i, name := range names {
		if name == value {
			return i, nil
		}
	}
	return 0, errors.New("unsupported " + kind + ": " + value)
}
