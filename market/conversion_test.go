package market

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQuotes struct {
	bid, ask   float64
	err        error
	called     int
	lastSymbol string
}

func (f *fakeQuotes) CurrentAsk(symbol string) (float64, error) {
	f.called++
	f.lastSymbol = symbol
	return f.ask, f.err
}

func (f *fakeQuotes) CurrentBid(symbol string) (float64, error) {
	f.called++
	f.lastSymbol = symbol
	return f.bid, f.err
}

func TestQuoteToAccountRate_UnknownInstrument(t *testing.T) {
	t.Parallel()

	q := &fakeQuotes{}
	rate, err := QuoteToAccountRate("NO_SUCH_INSTRUMENT", "USD", q)
	assert.True(t, errors.Is(err, ErrUnknownInstrument))
	assert.Equal(t, 0.0, rate)
}

func TestQuoteToAccountRate_QuoteEqualsAccount(t *testing.T) {
	t.Parallel()

	q := &fakeQuotes{}
	rate, err := QuoteToAccountRate("EUR_USD", "USD", q)
	assert.NoError(t, err)
	assert.Equal(t, 1.0, rate)
	assert.Equal(t, 0, q.called)
}

func TestQuoteToAccountRate_BaseEqualsAccount(t *testing.T) {
	t.Parallel()

	q := &fakeQuotes{bid: 2.0, ask: 4.0} // mid = 3.0
	rate, err := QuoteToAccountRate("USD_JPY", "USD", q)
	require.NoError(t, err)
	assert.InDelta(t, 1.0/3.0, rate, 1e-12)
	assert.Equal(t, "USD_JPY", q.lastSymbol)
}

func TestQuoteToAccountRate_MissingQuote(t *testing.T) {
	t.Parallel()

	_, err := QuoteToAccountRate("USD_JPY", "USD", NewTickStore())
	assert.True(t, errors.Is(err, ErrNoPrice))
}

func TestQuoteToAccountRate_CrossNotImplemented(t *testing.T) {
	t.Parallel()

	_, err := QuoteToAccountRate("EUR_GBP", "USD", &fakeQuotes{})
	assert.Error(t, err)
}

func TestTickValue(t *testing.T) {
	t.Parallel()

	tv, err := TickValue("EUR_USD", "USD", &fakeQuotes{})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, tv, 1e-9)

	tv, err = TickValue("USD_JPY", "USD", &fakeQuotes{bid: 149.99, ask: 150.01})
	require.NoError(t, err)
	assert.InDelta(t, 100.0/150.0, tv, 1e-9)

	tv, err = TickValue("XAU_USD", "USD", &fakeQuotes{})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, tv, 1e-9)
}

func TestPointValue(t *testing.T) {
	t.Parallel()

	pv, err := PointValue("EUR_USD", "USD", &fakeQuotes{})
	require.NoError(t, err)
	assert.Equal(t, 100_000.0, pv)

	// one tick of EUR_USD over a 50 pip stop is 500 USD per lot
	meta, err := Lookup("EUR_USD")
	require.NoError(t, err)
	ticks := 0.0050 / meta.TickSize
	assert.InDelta(t, 500.0, ticks*meta.TickSize*pv, 1e-6)

	_, err = PointValue("NOPE", "USD", &fakeQuotes{})
	assert.True(t, errors.Is(err, ErrUnknownInstrument))
}
