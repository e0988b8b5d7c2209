package market

import (
	"github.com/pkg/errors"
)

// QuoteToAccountRate converts one unit of the instrument's quote currency
// into the account currency.
func QuoteToAccountRate(instrument, accountCurrency string, quotes MarketDataSource) (float64, error) {
	meta, err := Lookup(instrument)
	if err != nil {
		return 0, err
	}

	// EUR_USD in a USD account
	if meta.QuoteCurrency == accountCurrency {
		return 1.0, nil
	}

	// USD_JPY in a USD account: mid is JPY per USD, we want USD per JPY.
	if meta.BaseCurrency == accountCurrency {
		bid, err := quotes.CurrentBid(instrument)
		if err != nil {
			return 0, err
		}
		ask, err := quotes.CurrentAsk(instrument)
		if err != nil {
			return 0, err
		}
		mid := (bid + ask) / 2
		if mid <= 0 {
			return 0, errors.Errorf("non-positive mid price for %s", instrument)
		}
		return 1.0 / mid, nil
	}

	return 0, errors.Errorf(
		"cross conversion not implemented for %s -> %s",
		meta.QuoteCurrency,
		accountCurrency,
	)
}

// TickValue is the account currency value of a one tick move for one lot.
func TickValue(instrument, accountCurrency string, quotes MarketDataSource) (float64, error) {
	meta, err := Lookup(instrument)
	if err != nil {
		return 0, err
	}
	rate, err := QuoteToAccountRate(instrument, accountCurrency, quotes)
	if err != nil {
		return 0, err
	}
	return meta.TickValueQuote() * rate, nil
}

// PointValue is the account currency value of a whole price unit move for
// one lot. Sizing requests carry this as their tick value, since the sizer
// prices a stop as ticks × tickSize × tickValue.
func PointValue(instrument, accountCurrency string, quotes MarketDataSource) (float64, error) {
	meta, err := Lookup(instrument)
	if err != nil {
		return 0, err
	}
	rate, err := QuoteToAccountRate(instrument, accountCurrency, quotes)
	if err != nil {
		return 0, err
	}
	return meta.ContractSize * rate, nil
}
