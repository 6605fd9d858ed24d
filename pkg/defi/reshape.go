package defi

import (
	"encoding/json"
	"time"

	"github.com/gtonic/defillama-mcp/pkg/defillama"
)

// SeriesPoint is one historical TVL sample with the date rendered as
// YYYY-MM-DD (UTC).
type SeriesPoint struct {
	Date string  `json:"date"`
	TVL  float64 `json:"tvl"`
}

// PoolChart wraps a pool's chart data together with the requested pool id.
type PoolChart struct {
	PoolID string            `json:"pool_id"`
	Data   []json.RawMessage `json:"data"`
}

// FlattenChainTVLs turns a per-chain TVL breakdown into a single-level map
// with an added "total" key holding the arithmetic sum of all chain values.
func FlattenChainTVLs(chains map[string]float64) map[string]float64 {
	result := make(map[string]float64, len(chains)+1)

	var total float64

	for chain, tvl := range chains {
		result[chain] = tvl
		total += tvl
	}

	result["total"] = total

	return result
}

// FormatSeries converts upstream unix-second samples into dated points,
// preserving order.
func FormatSeries(series []defillama.ChainTVLPoint) []SeriesPoint {
	result := make([]SeriesPoint, 0, len(series))

	for _, p := range series {
		result = append(result, SeriesPoint{
			Date: time.Unix(p.Date, 0).UTC().Format("2006-01-02"),
			TVL:  p.TVL,
		})
	}

	return result
}
