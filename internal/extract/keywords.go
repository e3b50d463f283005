package extract

// domainKeywords are terms that mark a query as being about history.
// Multi-word entries are matched as phrases.
var domainKeywords = []string{
	// political
	"king", "queen", "emperor", "empress", "president", "prime minister",
	"monarchy", "monarch", "dynasty", "kingdom", "empire", "republic",
	"parliament", "senate", "congress", "constitution", "election",
	"revolution", "coup", "regime", "pharaoh", "sultan", "tsar", "czar",
	"caliphate", "pope", "apartheid", "slavery", "independence", "colony",
	"colonial", "assassination", "assassinated",

	// military
	"war", "battle", "army", "navy", "military", "invasion", "invaded",
	"siege", "conquest", "conquered", "crusade", "armistice", "surrender",
	"treaty", "rebellion", "uprising", "occupation", "liberation",
	"world war", "civil war", "cold war", "wwi", "wwii", "ww1", "ww2",
	"d-day", "holocaust", "genocide",

	// temporal
	"century", "ancient", "medieval", "middle ages", "renaissance",
	"reformation", "antiquity", "prehistoric", "era", "reign", "victorian",
	"industrial revolution",

	// events and exploration
	"expedition", "explorer", "discovered", "founded", "moon landing",
	"plague", "famine", "massacre", "migration",

	// civilizations and institutions
	"roman", "byzantine", "ottoman", "mongol", "viking", "samurai", "nazi",
	"soviet", "aztec", "inca", "maya", "church",

	// the discipline itself
	"history", "historical", "historian", "archaeology", "archaeological",
}

// eraKeywords mark a time period even without an explicit year
var eraKeywords = []string{
	"century", "centuries", "ancient", "medieval", "middle ages",
	"renaissance", "antiquity", "prehistoric", "bronze age", "iron age",
	"stone age", "victorian era", "bce", "bc",
}

// intentBucket is one class of non-historical request
type intentBucket struct {
	name  string
	hints []string
}

// nonHistoricalBuckets are checked in order; the first match wins
var nonHistoricalBuckets = []intentBucket{
	{
		name: "creative_request",
		hints: []string{
			"write me a poem", "poem about", "song about", "lyrics about",
			"short story", "story about", "screenplay", "script for",
		},
	},
	{
		name: "coding_request",
		hints: []string{
			"python code", "python script", "python function", "write a python",
			"write a function", "write code", "code this", "bash script",
			"shell script", "powershell script", "dockerfile", "docker compose",
			"sql query", "regex for", "javascript function", "java function",
		},
	},
	{
		name: "chat_request",
		hints: []string{
			"tell me a joke", "make me laugh", "roast me", "pick up line",
			"pickup line", "dating advice", "relationship advice", "life advice",
		},
	},
	{
		name: "opinion_request",
		hints: []string{
			"what's the best", "what is the best", "which is better",
			"do you prefer", "what do you think about", "what do you think of",
			"should i", "would you recommend", "top 10", "best way to",
			"your opinion", "your favorite", "your favourite",
		},
	},
}

// genericTruthQuestions carry no claim of their own
var genericTruthQuestions = []string{
	"did it happen",
	"is it true",
	"is that true",
	"is this true",
	"what happened",
}
