package landing

import "rental-savings/domain"

// Step one entry of the "how it works" section
type Step struct {
	Number      int
	Title       string
	Description string
}

var steps = []Step{
	{1, "Tell Us What You Want", "Send us the title of the movie or show you want to rent and which platform you prefer."},
	{2, "Pay the Discounted Price", "You pay only 70–80% of the original rental price. No hidden fees, no subscriptions."},
	{3, "Enjoy Your Rental", "We process your rental and you get access on your chosen platform within minutes."},
}

// sample a savings example shown with its price at every tier
type sample struct {
	Title    string
	Original domain.Amount
}

var samples = []sample{
	{"New Release Movie", 5.99},
	{"Latest TV Episode", 3.99},
	{"Premium 4K Movie", 19.99},
}

const (
	defaultPrice     = "5.99"
	defaultAmount    = "10.00"
	defaultTarget    = domain.Currency("EUR")
	ratesErrorNotice = "Failed to load exchange rates. Please try again."
)
