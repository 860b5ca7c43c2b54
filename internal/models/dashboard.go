package models

import "time"

// Token is a single search result from the token metadata provider, trimmed down to the fields
// the dashboard renders.
type Token struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	Image         string `json:"image,omitempty"`
	MarketCapRank int    `json:"marketCapRank,omitempty"`
}

// WalletToken is one ERC-20 position in a wallet portfolio as reported by the wallet data provider.
type WalletToken struct {
	TokenAddress string `json:"token_address"`
	Name         string `json:"name"`
	Symbol       string `json:"symbol"`
	Decimals     int    `json:"decimals"`
	Balance      string `json:"balance"`
}

// WalletOverview aggregates the native balance and token portfolio of one address.
type WalletOverview struct {
	Address       string        `json:"address"`
	Balance       string        `json:"balance"`
	NativeBalance string        `json:"nativeBalance"`
	Tokens        []WalletToken `json:"tokens"`
}

// MetricPoint is one sample in a metric history series.
type MetricPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// AnalyticsMetric carries the current value of a dashboard metric along with its recent movement.
// Not every metric populates every field: only tvl carries a history, and only gasPrice carries a
// unit.
type AnalyticsMetric struct {
	Current   float64       `json:"current"`
	Unit      string        `json:"unit,omitempty"`
	Change24h float64       `json:"change24h"`
	Change7d  float64       `json:"change7d,omitempty"`
	History   []MetricPoint `json:"history,omitempty"`
}

// Engagement holds the interaction counters attached to a social post.
type Engagement struct {
	Likes    int `json:"likes"`
	Retweets int `json:"retweets,omitempty"`
}

// SocialPost is a single entry in a social feed.
type SocialPost struct {
	ID         string     `json:"id"`
	Platform   string     `json:"platform"`
	Author     string     `json:"author"`
	Content    string     `json:"content"`
	Timestamp  time.Time  `json:"timestamp"`
	Engagement Engagement `json:"engagement"`
	URL        string     `json:"url"`
}

// Transcription is the placeholder result of the voice endpoint. Real speech-to-text is not wired;
// the shape matches what a transcription backend would return.
type Transcription struct {
	Transcription string    `json:"transcription"`
	Confidence    float64   `json:"confidence"`
	Language      string    `json:"language"`
	Timestamp     time.Time `json:"timestamp"`
}
