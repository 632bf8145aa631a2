package domain

// Feedback is a fire-and-forget presentation cue, usually rendered as a sound
type Feedback string

const (
	FeedbackHitPerfect    Feedback = "hit-perfect"
	FeedbackHitGood       Feedback = "hit-good"
	FeedbackHitBad        Feedback = "hit-bad"
	FeedbackCash          Feedback = "cash"
	FeedbackSuccess       Feedback = "success"
	FeedbackDayStart      Feedback = "day-start"
	FeedbackCustomerEnter Feedback = "customer-enter"
	FeedbackSaw           Feedback = "saw"
	FeedbackSizzle        Feedback = "sizzle"
	FeedbackClick         Feedback = "click"
)
