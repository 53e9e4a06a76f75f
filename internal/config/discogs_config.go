package config

const (
	consumerKeyVar    = "DISCOGS_CONSUMER_KEY"
	consumerSecretVar = "DISCOGS_CONSUMER_SECRET"
	userAgentVar      = "DISCOGS_USER_AGENT"
)

// DiscogsConfig identifies this application to the upstream catalog service.
// The consumer key pair is static for the process lifetime and is never
// mutated after startup.
type DiscogsConfig interface {
	GetConsumerKey() string
	GetConsumerSecret() string
	GetUserAgent() string
}

type Discogs struct{}

var _ DiscogsConfig = Discogs{}

func (Discogs) GetConsumerKey() string {
	return GetEnv(consumerKeyVar, "")
}

func (Discogs) GetConsumerSecret() string {
	return GetEnv(consumerSecretVar, "")
}

func (Discogs) GetUserAgent() string {
	return GetEnv(userAgentVar, "HouseRecommenderApp/1.0")
}
