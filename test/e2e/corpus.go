// Package e2e provides end-to-end tests with a generated news dataset and multiple queries.
package e2e

import (
	"fmt"
	"strings"
	"time"
)

// NewsItem is a row of the E2E dataset in the BBC feed shape.
type NewsItem struct {
	GUID        string
	Title       string
	Description string
	Link        string
	PubDate     time.Time
}

// QueryTestCase defines a query and the GUID(s) of which at least one must appear in the hits.
type QueryTestCase struct {
	Query         string
	ExpectedGUIDs []string
	Description   string
}

// Dataset holds news items and query test cases for E2E tests.
type Dataset struct {
	Items        []NewsItem
	TestCases    []QueryTestCase
	TotalItems   int
	TotalQueries int
}

// BuildDataset returns n news items with varied content and query test cases.
// Each topic has a signature phrase so queries can assert the right article is returned.
func BuildDataset(n int) *Dataset {
	items := buildItems(n)
	cases := buildQueryTestCases(items)
	return &Dataset{
		Items:        items,
		TestCases:    cases,
		TotalItems:   len(items),
		TotalQueries: len(cases),
	}
}

var topics = []struct {
	title       string
	phrase      string
	description string
}{
	{"Climate summit opens", "climate summit emissions", "World leaders gather as the climate summit emissions targets dominate talks."},
	{"Central bank holds rates", "central bank interest rates", "The central bank interest rates decision surprised traders in the city."},
	{"Striker signs new contract", "striker contract football", "The striker contract football deal keeps him at the club until 2027."},
	{"Hospital waiting lists grow", "hospital waiting lists", "Patients face record hospital waiting lists across the region."},
	{"Election campaign begins", "election campaign candidates", "The election campaign candidates set out rival plans for housing."},
	{"Chip maker expands factory", "semiconductor factory jobs", "A semiconductor factory jobs boost is expected in the valley."},
	{"Flood warnings issued", "flood warnings rivers", "Forecasters issue flood warnings rivers after days of heavy rain."},
	{"Museum returns artefacts", "museum artefacts returned", "The museum artefacts returned to their country of origin on Monday."},
	{"Rail strike disrupts commuters", "rail strike commuters", "A rail strike commuters endured left stations empty at rush hour."},
	{"Space probe reaches Jupiter", "space probe Jupiter orbit", "The space probe Jupiter orbit insertion was confirmed by engineers."},
	{"Vaccine trial succeeds", "vaccine trial results", "Early vaccine trial results show a strong immune response in adults."},
	{"Wildfire spreads", "wildfire evacuation orders", "Residents follow wildfire evacuation orders as winds pick up."},
	{"Tech firm faces fine", "privacy regulator fine", "A privacy regulator fine was imposed over data handling failures."},
	{"Olympic team announced", "olympic swimming squad", "The olympic swimming squad includes three teenage debutants."},
	{"Housing prices fall", "housing market prices", "The housing market prices index dropped for a third month."},
	{"Film festival winners", "film festival award", "A debut director took the top film festival award on Saturday."},
	{"School meals expanded", "free school meals", "Free school meals will be offered to more primary pupils."},
	{"Electric car sales surge", "electric car sales", "Electric car sales overtook diesel for the first time this year."},
	{"Cyber attack on council", "cyber attack ransomware", "The council confirmed a cyber attack ransomware incident hit payroll."},
	{"Drought hits farmers", "drought crops farmers", "The drought crops farmers planted have failed, leaving them seeking support."},
	{"Orchestra tours Asia", "orchestra concert tour", "The orchestra concert tour opens in Tokyo next month."},
	{"Airport expansion approved", "airport runway expansion", "Ministers approved the airport runway expansion despite protests."},
	{"Tennis final postponed", "tennis final rain", "The tennis final rain delay pushed play to Monday."},
	{"Inflation eases", "inflation consumer prices", "Inflation consumer prices growth slowed to its lowest in two years."},
	{"Volcano erupts", "volcano eruption ash", "Flights were grounded as volcano eruption ash drifted south."},
	{"Novelist wins prize", "novelist literary prize", "The novelist literary prize went to a story of migration."},
	{"Steel plant closes", "steel plant closure", "Workers react to the steel plant closure announced today."},
	{"Bird flu outbreak", "bird flu poultry", "Bird flu poultry restrictions were extended across the county."},
	{"Robot surgery milestone", "robotic surgery patients", "Robotic surgery patients recovered faster in a new study."},
	{"Marathon record broken", "marathon world record", "The marathon world record fell by eleven seconds in Berlin."},
}

func buildItems(n int) []NewsItem {
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	out := make([]NewsItem, 0, n)
	for i := 0; i < n; i++ {
		t := topics[i%len(topics)]
		title := t.title
		if i >= len(topics) {
			title = fmt.Sprintf("%s (%d)", t.title, i+1)
		}
		out = append(out, NewsItem{
			GUID:        fmt.Sprintf("e2e-news-%03d", i+1),
			Title:       title,
			Description: t.description,
			Link:        fmt.Sprintf("https://www.bbc.co.uk/news/e2e-%03d", i+1),
			PubDate:     base.Add(time.Duration(i%7) * 24 * time.Hour),
		})
	}
	return out
}

func buildQueryTestCases(items []NewsItem) []QueryTestCase {
	var cases []QueryTestCase
	for _, t := range topics {
		var expected []string
		for _, it := range items {
			if containsPhrase(it, t.phrase) {
				expected = append(expected, it.GUID)
			}
		}
		if len(expected) == 0 {
			continue
		}
		cases = append(cases, QueryTestCase{
			Query:         t.phrase,
			ExpectedGUIDs: expected,
			Description:   fmt.Sprintf("query %q should return one of %d articles", t.phrase, len(expected)),
		})
	}
	return cases
}

func containsPhrase(it NewsItem, phrase string) bool {
	return strings.Contains(strings.ToLower(it.Description), strings.ToLower(phrase))
}
