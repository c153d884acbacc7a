package seed

var firstNames = []string{
	"james", "john", "robert", "michael", "william", "david", "richard", "charles", "joseph", "thomas",
	"christopher", "daniel", "paul", "mark", "donald", "george", "kenneth", "steven", "edward", "brian",
	"ronald", "anthony", "kevin", "jason", "matthew", "gary", "timothy", "jose", "larry", "jeffrey",
	"frank", "scott", "eric", "stephen", "andrew", "raymond", "gregory", "joshua", "jerry", "dennis",
	"walter", "patrick", "peter", "harold", "douglas", "henry", "carl", "arthur", "ryan", "roger",
	"mary", "patricia", "linda", "barbara", "elizabeth", "jennifer", "maria", "susan", "margaret", "dorothy",
	"lisa", "nancy", "karen", "betty", "helen", "sandra", "donna", "carol", "ruth", "sharon",
}

var lastNames = []string{
	"smith", "johnson", "williams", "jones", "brown", "davis", "miller", "wilson", "moore", "taylor",
	"anderson", "thomas", "jackson", "white", "harris", "martin", "thompson", "garcia", "martinez", "robinson",
	"clark", "rodriguez", "lewis", "lee", "walker", "hall", "allen", "young", "hernandez", "king",
	"wright", "lopez", "hill", "scott", "green", "adams", "baker", "gonzalez", "nelson", "carter",
	"mitchell", "perez", "roberts", "turner", "phillips", "campbell", "parker", "evans", "edwards", "collins",
}

var defaultTaskNames = []string{
	"Write quarterly report",
	"Review pull request",
	"Update project roadmap",
	"Prepare demo",
	"Fix login bug",
	"Plan team offsite",
	"Refactor billing module",
	"Draft onboarding guide",
	"Renew TLS certificates",
	"Migrate build pipeline",
	"Triage support tickets",
	"Benchmark search endpoint",
	"Clean up feature flags",
	"Archive old invoices",
	"Schedule design review",
}
