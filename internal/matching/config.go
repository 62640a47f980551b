package matching

// Weights are the per-dimension weights of the overall compatibility score.
type Weights struct {
	Skills     float64
	Experience float64
	Location   float64
	Salary     float64
	Culture    float64
}

func DefaultWeights() Weights {
	return Weights{
		Skills:     0.35,
		Experience: 0.25,
		Location:   0.15,
		Salary:     0.15,
		Culture:    0.10,
	}
}

// SkillCategory buckets related skills so that, say, python and go count as a
// partial match on "programming".
type SkillCategory struct {
	Name     string
	Keywords []string
}

func DefaultSkillCategories() []SkillCategory {
	return []SkillCategory{
		{Name: "programming", Keywords: []string{"python", "javascript", "java", "c++", "go", "rust", "typescript"}},
		{Name: "web_development", Keywords: []string{"react", "vue", "angular", "node.js", "express", "django", "flask"}},
		{Name: "mobile", Keywords: []string{"react native", "flutter", "ios", "android", "swift", "kotlin"}},
		{Name: "data_science", Keywords: []string{"machine learning", "ai", "tensorflow", "pytorch", "pandas", "numpy"}},
		{Name: "devops", Keywords: []string{"docker", "kubernetes", "aws", "azure", "terraform", "jenkins", "ci/cd"}},
		{Name: "database", Keywords: []string{"sql", "postgresql", "mongodb", "redis", "elasticsearch", "mysql"}},
	}
}
