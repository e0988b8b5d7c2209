package market

import "github.com/pkg/errors"

var ErrUnknownInstrument = errors.New("unknown instrument")

// InstrumentMeta describes the sizing relevant contract details of a symbol.
// One lot is ContractSize units of the base; one tick moves TickSize in price.
type InstrumentMeta struct {
	Name          string
	BaseCurrency  string
	QuoteCurrency string
	TickSize      float64
	ContractSize  float64
	MinLots       float64
	MaxLots       float64
	LotDecimals   int
}

// TickValueQuote is the value of a one tick move for one lot, in the quote currency.
func (m InstrumentMeta) TickValueQuote() float64 {
	return m.TickSize * m.ContractSize
}

var Instruments = map[string]InstrumentMeta{
	"EUR_USD": {
		Name:          "EUR_USD",
		BaseCurrency:  "EUR",
		QuoteCurrency: "USD",
		TickSize:      0.00001,
		ContractSize:  100_000,
		MinLots:       0.01,
		MaxLots:       100,
		LotDecimals:   2,
	},
	"GBP_USD": {
		Name:          "GBP_USD",
		BaseCurrency:  "GBP",
		QuoteCurrency: "USD",
		TickSize:      0.00001,
		ContractSize:  100_000,
		MinLots:       0.01,
		MaxLots:       100,
		LotDecimals:   2,
	},
	"USD_JPY": {
		Name:          "USD_JPY",
		BaseCurrency:  "USD",
		QuoteCurrency: "JPY",
		TickSize:      0.001,
		ContractSize:  100_000,
		MinLots:       0.01,
		MaxLots:       100,
		LotDecimals:   2,
	},
	"EUR_GBP": {
		Name:          "EUR_GBP",
		BaseCurrency:  "EUR",
		QuoteCurrency: "GBP",
		TickSize:      0.00001,
		ContractSize:  100_000,
		MinLots:       0.01,
		MaxLots:       100,
		LotDecimals:   2,
	},
	"XAU_USD": {
		Name:          "XAU_USD",
		BaseCurrency:  "XAU",
		QuoteCurrency: "USD",
		TickSize:      0.01,
		ContractSize:  100,
		MinLots:       0.01,
		MaxLots:       50,
		LotDecimals:   2,
	},
}

func Lookup(name string) (InstrumentMeta, error) {
	meta, ok := Instruments[name]
	if !ok {
		return InstrumentMeta{}, errors.Wrap(ErrUnknownInstrument, name)
	}
	return meta, nil
}
