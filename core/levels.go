package core

// Academic levels
const (
	Level100 = "100"
	Level200 = "200"
	Level300 = "300"
	Level400 = "400"
)

var Levels = []Level{
	{ID: Level100, Title: "Welcome to 100 Level Portal", Subtitle: "First year students - Access your materials, assignments, and updates"},
	{ID: Level200, Title: "Welcome to 200 Level Portal", Subtitle: "Second year students - Stay on top of your academic journey"},
	{ID: Level300, Title: "Welcome to 300 Level Portal", Subtitle: "Third year students - Advanced courses and resources await"},
	{ID: Level400, Title: "Welcome to 400 Level Portal", Subtitle: "Final year students - Complete your academic excellence"},
}

// DefaultSubjects are seeded by `admin addsubject -defaults`.
var DefaultSubjects = []string{"Statistics", "Physics", "English", "Mathematics", "Computer Science"}

type Level struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

func GetLevel(id string) (Level, bool) {
	for _, lvl := range Levels {
		if lvl.ID == id {
			return lvl, true
		}
	}
	return Level{}, false
}

func IsLevel(id string) bool {
	_, ok := GetLevel(id)
	return ok
}
