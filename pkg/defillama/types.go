package defillama

import (
	"fmt"
)

// Protocol is the subset of a protocol summary this service exposes. The
// upstream record carries many more fields; unknown ones are dropped.
type Protocol struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Symbol string  `json:"symbol"`
	Chain  string  `json:"chain"`
	TVL    float64 `json:"tvl"`
}

// ProtocolDetail is the /protocol/{slug} record. CurrentChainTVLs maps chain
// name to locked value; the upstream may omit it entirely.
type ProtocolDetail struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Chain       string `json:"chain"`
	Logo        string `json:"logo"`
	Category    string `json:"category"`

	CurrentChainTVLs map[string]float64 `json:"currentChainTvls"`
}

// ChainTVLPoint is one sample of a historical chain TVL series. Date is unix
// seconds.
type ChainTVLPoint struct {
	Date int64   `json:"date"`
	TVL  float64 `json:"tvl"`
}

type TokenPrice struct {
	Symbol     string  `json:"symbol,omitempty"`
	Decimals   int     `json:"decimals,omitempty"`
	Price      float64 `json:"price"`
	Timestamp  int64   `json:"timestamp,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

// UpstreamError reports a failed or unusable upstream response. Status is the
// upstream HTTP status, or zero when the request never completed.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("upstream error (status %d): %s", e.Status, e.Message)
	}

	return "upstream error: " + e.Message
}
