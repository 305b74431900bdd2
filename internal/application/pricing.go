package application

// PricingTier is static catalog data for the pricing page. There is no
// billing logic behind it; the client renders it as-is.
type PricingTier struct {
	Name     string   `json:"name"`
	Price    string   `json:"price"`
	Period   string   `json:"period"`
	Messages string   `json:"messages"`
	Features []string `json:"features"`
	Popular  bool     `json:"popular,omitempty"`
}

// PricingTiers returns the plan catalog.
func PricingTiers() []PricingTier {
	return []PricingTier{
		{
			Name:     "Free",
			Price:    "$0",
			Period:   "/month",
			Messages: "10 messages/month",
			Features: []string{"5 daily messages", "Public projects", "Community support", "Basic AI models"},
		},
		{
			Name:     "Starter",
			Price:    "$20",
			Period:   "/month",
			Messages: "100 messages/month",
			Features: []string{"All Free features", "Private projects", "Custom domains", "Download code", "Remove badge"},
		},
		{
			Name:     "Pro",
			Price:    "$50",
			Period:   "/month",
			Messages: "250 messages/month",
			Features: []string{"All Starter features", "Advanced AI models", "Priority support", "Team collaboration", "Advanced analytics"},
			Popular:  true,
		},
		{
			Name:     "Max",
			Price:    "$100",
			Period:   "/month",
			Messages: "500 messages/month",
			Features: []string{"All Pro features", "Early access to beta features", "Dedicated support", "Custom integrations", "Enterprise security"},
		},
	}
}
