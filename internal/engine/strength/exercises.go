package strength

import "github.com/claude/raptorfit/internal/models"

// exerciseGroups maps normalized exercise names to the group they train.
var exerciseGroups = map[string]models.MuscleGroup{
	"bench press":            models.Chest,
	"incline bench press":    models.Chest,
	"decline bench press":    models.Chest,
	"dumbbell bench press":   models.Chest,
	"incline dumbbell press": models.Chest,
	"chest press":            models.Chest,
	"chest fly":              models.Chest,
	"cable fly":              models.Chest,
	"dips":                   models.Chest,
	"push ups":               models.Chest,

	"deadlift":                       models.Back,
	"barbell row":                    models.Back,
	"bent over row":                  models.Back,
	"dumbbell row":                   models.Back,
	"seated cable row":               models.Back,
	"t-bar row":                      models.Back,
	"pull ups":                       models.Back,
	"pull-ups":                       models.Back,
	"chin ups":                       models.Back,
	"lat pulldown":                   models.Back,
	"hyperextensions":                models.Back,
	"hyperextensions on roman chair": models.Back,
	"romanian deadlift":              models.Legs,
	"squat":                          models.Legs,
	"back squat":                     models.Legs,
	"front squat":                    models.Legs,
	"hack squats":                    models.Legs,
	"sumo squats":                    models.Legs,
	"leg press":                      models.Legs,
	"lunges":                         models.Legs,
	"reverse lunges":                 models.Legs,
	"bulgarian split squat":          models.Legs,
	"leg extension":                  models.Legs,
	"leg curl":                       models.Legs,
	"hip thrust":                     models.Legs,
	"standing calf raises":           models.Legs,
	"calf raises":                    models.Legs,

	"overhead press":          models.Shoulders,
	"military press":          models.Shoulders,
	"shoulder press":          models.Shoulders,
	"dumbbell shoulder press": models.Shoulders,
	"lateral raises":          models.Shoulders,
	"front raises":            models.Shoulders,
	"face pulls":              models.Shoulders,
	"rear delt fly":           models.Shoulders,
	"upright row":             models.Shoulders,

	"bicep curl":             models.Arms,
	"barbell curl":           models.Arms,
	"dumbbell curl":          models.Arms,
	"hammer curl":            models.Arms,
	"preacher curl":          models.Arms,
	"tricep pushdown":        models.Arms,
	"tricep extension":       models.Arms,
	"skull crushers":         models.Arms,
	"close grip bench press": models.Arms,

	"plank":              models.Core,
	"hanging leg raises": models.Core,
	"cable crunch":       models.Core,
	"ab wheel":           models.Core,
	"russian twist":      models.Core,
}

// LookupGroup resolves an exercise name through the fixed table.
func LookupGroup(name string) (models.MuscleGroup, bool) {
	g, ok := exerciseGroups[models.NormalizeExerciseName(name)]
	return g, ok
}

// ResolveGroup prefers the group logged with the exercise and falls back to the
// name table. ok is false when neither yields a known group.
func ResolveGroup(ex models.ExerciseEntry) (models.MuscleGroup, bool) {
	if g, ok := models.ParseMuscleGroup(string(ex.MuscleGroup)); ok {
		return g, true
	}
	return LookupGroup(ex.Name)
}
