package model

import "time"

// Pool is a prediction pool for the tournament. People join it with the
// short Code and then submit score guesses for each game.
//
// WHY OwnerID *string?
// A pool created without authentication has no owner yet. The first
// authenticated user to join claims ownership, exactly once — the column
// goes from NULL to a fixed user id and is never reassigned. A nil pointer
// models the "no owner yet" state without a magic sentinel value.
type Pool struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Code      string    `json:"code"` // 6 uppercase alphanumerics, unique
	OwnerID   *string   `json:"ownerId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Participant links one User to one Pool. The (UserID, PoolID) pair is
// unique — a user belongs to a given pool at most once. Guesses hang off
// the participant, not the user, so membership is a prerequisite for
// guessing.
type Participant struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	PoolID    string    `json:"poolId"`
	CreatedAt time.Time `json:"createdAt"`
}

// PoolSummary is the read-side projection served to clients: the pool plus
// its owner, a bounded preview of member avatars, and the member count.
// It deliberately carries no guess data — projections expose identity and
// avatar only.
type PoolSummary struct {
	ID           string               `json:"id"`
	Title        string               `json:"title"`
	Code         string               `json:"code"`
	CreatedAt    time.Time            `json:"createdAt"`
	Owner        *OwnerPreview        `json:"owner"` // null while the pool is ownerless
	Participants []ParticipantPreview `json:"participants"`
	Count        int                  `json:"participantCount"`
}

// OwnerPreview is the owner slice of a PoolSummary.
type OwnerPreview struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ParticipantPreview is one avatar in the summary strip. At most four are
// included per pool, in join order.
type ParticipantPreview struct {
	ID        string `json:"id"`
	AvatarURL string `json:"avatarUrl"`
}
