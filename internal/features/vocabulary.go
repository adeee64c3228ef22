package features

// technicalVocabulary lists languages, frameworks, data and infrastructure terms.
// Entries are lower case; multi-word entries match across any run of whitespace.
var technicalVocabulary = []string{
	// languages
	"python", "java", "javascript", "typescript", "golang", "rust", "c++", "c#", "ruby", "php",
	"kotlin", "swift", "scala", "sql", "html", "css", "bash",
	// frameworks
	"react", "angular", "vue", "node.js", "django", "flask", "fastapi", "spring boot", "rails",
	".net", "express.js", "next.js",
	// data
	"machine learning", "deep learning", "data analysis", "pandas", "numpy", "tensorflow",
	"pytorch", "spark", "hadoop", "tableau", "power bi", "statistics",
	// storage and messaging
	"postgresql", "mysql", "mongodb", "redis", "elasticsearch", "kafka", "rabbitmq", "graphql",
	"rest api", "microservices",
	// infrastructure
	"aws", "azure", "gcp", "docker", "kubernetes", "terraform", "ansible", "jenkins", "ci/cd",
	"git", "linux",
	// design tools
	"figma", "adobe xd", "photoshop",
}

var softVocabulary = []string{
	"communication", "teamwork", "leadership", "problem solving", "collaboration",
	"time management", "adaptability", "critical thinking", "creativity", "mentoring",
	"attention to detail", "stakeholder management", "presentation", "negotiation",
	"ownership", "self-motivated",
}

// experienceVocabulary holds seniority and role-level keywords.
var experienceVocabulary = []string{
	"senior", "junior", "lead", "principal", "staff", "intern", "internship", "entry level",
	"mid-level", "experienced", "expert", "architect", "manager", "head of", "graduate",
}

// aliases maps alternate spellings to their vocabulary entry.
var aliases = map[string]string{
	"k8s":                 "kubernetes",
	"nodejs":              "node.js",
	"reactjs":             "react",
	"react.js":            "react",
	"vue.js":              "vue",
	"vuejs":               "vue",
	"angularjs":           "angular",
	"postgres":            "postgresql",
	"amazon web services": "aws",
	"google cloud":        "gcp",
	"csharp":              "c#",
	"cpp":                 "c++",
	"ts":                  "typescript",
	"ml":                  "machine learning",
	"expressjs":           "express.js",
	"nextjs":              "next.js",
	"problem-solving":     "problem solving",
	"team work":           "teamwork",
	"team player":         "teamwork",
	"detail-oriented":     "attention to detail",
	"self motivated":      "self-motivated",
	"entry-level":         "entry level",
	"mid level":           "mid-level",
}
