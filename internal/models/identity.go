package models

// Identity describes a confirmed account. A row exists only once the owner has
// followed the activation link; pending registrations live solely inside the
// signed activation token.
type Identity struct {
	BaseModel

	Name         string `gorm:"not null" json:"name"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`

	Activated bool `gorm:"default:false" json:"activated"`

	// RecoveryID is the rotating secret that password-reset links are bound
	// to. It is regenerated every time a reset completes, which is what makes
	// a used link dead while its token is still cryptographically valid.
	RecoveryID string `gorm:"uniqueIndex;not null" json:"-"`
}
