package language

import "github.com/Masterminds/semver/v3"

// judge0Languages is the language table of the public Judge0 CE instance.
var judge0Languages = []Language{
	{Key: "javascript", ID: 63, Name: "JavaScript (Node.js)", Version: semver.MustParse("12.14.0")},
	{Key: "python", ID: 71, Name: "Python", Version: semver.MustParse("3.8.1")},
	{Key: "c", ID: 50, Name: "C (GCC)", Version: semver.MustParse("9.2.0")},
	{Key: "cpp", ID: 54, Name: "C++ (GCC)", Version: semver.MustParse("9.2.0")},
	{Key: "java", ID: 62, Name: "Java (OpenJDK)", Version: semver.MustParse("13.0.1")},
	{Key: "php", ID: 68, Name: "PHP", Version: semver.MustParse("7.4.1")},
	{Key: "ruby", ID: 72, Name: "Ruby", Version: semver.MustParse("2.7.0")},
	{Key: "go", ID: 60, Name: "Go", Version: semver.MustParse("1.13.5")},
	// Arduino sketches are compiled as C++
	{Key: "arduino", ID: 54, Name: "Arduino (C++ GCC)", Version: semver.MustParse("9.2.0")},
}

// Default returns the registry for the public Judge0 CE language table
func Default() *Registry {
	r, err := NewRegistry(judge0Languages)
	if err != nil {
		panic(err)
	}
	return r
}
