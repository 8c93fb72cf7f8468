package scene

// Transition describes how the camera should approach a keyframe target.
type Transition string

const (
	// TransitionSpringIn is an energetic move into a scene, used for the
	// first scene and when returning from an idle zoom-out.
	TransitionSpringIn Transition = "spring_in"
	// TransitionSpringOut relaxes toward a wider view during idle spans.
	TransitionSpringOut Transition = "spring_out"
	// TransitionSmooth is the default scene-to-scene move.
	TransitionSmooth Transition = "smooth"
)

// SpringHint carries the planner's half-life choice for the move, in
// seconds, already scaled by the animation speed preset.
type SpringHint struct {
	ZoomHalfLife float64
	PanHalfLife  float64
}

// Keyframe is one sparse control point of the camera plan. The viewport
// integrator applies keyframes in timestamp order.
type Keyframe struct {
	T          int64 // milliseconds from recording start
	TargetX    float64
	TargetY    float64
	ZoomLevel  float64
	Transition Transition
	Hint       *SpringHint
}
