package trading_test

import (
	"strings"
	"sync"
	"testing"

	"gitlab.heather.loc/helios/venuelink/pkg/trading"
	"gotest.tools/assert"
)

const testNativeIDs = `
storages:
  gate-a:
    - {code: AAPL, board: NASDAQ, native: "265598"}
    - {code: SiU9, board: FORTS, native: "SiU9@SPBFUT"}
  gate-b:
    - code: AAPL
      board: NASDAQ
      native: AAPL.O
`

func TestNativeIDs(t *testing.T) {
	aapl := trading.SecurityID{Code: "AAPL", Board: "NASDAQ"}

	t.Run("load", func(t *testing.T) {
		storage, err := trading.LoadNativeIDs(strings.NewReader(testNativeIDs))
		assert.NilError(t, err)

		native, ok := storage.TryGetBySecurityID("gate-a", aapl)
		assert.Check(t, ok)
		assert.Equal(t, native, "265598")

		native, ok = storage.TryGetBySecurityID("gate-b", aapl)
		assert.Check(t, ok)
		assert.Equal(t, native, "AAPL.O")

		_, ok = storage.TryGetBySecurityID("gate-c", aapl)
		assert.Check(t, !ok, "unknown storage")

		id, ok := storage.TryGetByNativeID("gate-a", "SiU9@SPBFUT")
		assert.Check(t, ok)
		assert.Equal(t, id, trading.SecurityID{Code: "SiU9", Board: "FORTS", Native: "SiU9@SPBFUT"})
	})

	t.Run("native part of the id is ignored", func(t *testing.T) {
		storage := trading.NewNativeIDs()
		storage.Add("gate-a", aapl, "1")
		native, ok := storage.TryGetBySecurityID("gate-a", trading.SecurityID{Code: "AAPL", Board: "NASDAQ", Native: "old"})
		assert.Check(t, ok)
		assert.Equal(t, native, "1")

		storage.Add("gate-a", aapl, "2")
		native, _ = storage.TryGetBySecurityID("gate-a", aapl)
		assert.Equal(t, native, "2", "binding is replaced")

		storage.Delete("gate-a")
		_, ok = storage.TryGetBySecurityID("gate-a", aapl)
		assert.Check(t, !ok)
	})

	t.Run("invalid files", func(t *testing.T) {
		_, err := trading.LoadNativeIDs(strings.NewReader("storages:\n  gate-a:\n    - {code: AAPL}\n"))
		assert.ErrorContains(t, err, "code and native are required")

		_, err = trading.LoadNativeIDs(strings.NewReader("storages: [1, 2"))
		assert.ErrorContains(t, err, "fail decode native ids")

		storage, err := trading.LoadNativeIDs(strings.NewReader(""))
		assert.NilError(t, err)
		_, ok := storage.TryGetBySecurityID("gate-a", aapl)
		assert.Check(t, !ok)
	})

	t.Run("concurrent access", func(t *testing.T) {
		storage := trading.NewNativeIDs()
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					storage.Add("gate-a", aapl, "265598")
					storage.TryGetBySecurityID("gate-a", aapl)
					storage.TryGetByNativeID("gate-b", "x")
				}
			}(i)
		}
		wg.Wait()
		native, ok := storage.TryGetBySecurityID("gate-a", aapl)
		assert.Check(t, ok)
		assert.Equal(t, native, "265598")
	})
}
