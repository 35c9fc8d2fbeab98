package screen

import (
	"context"

	"github.com/ams-studio/ams/pkg/auth"
	"github.com/ams-studio/ams/pkg/models"
	"github.com/ams-studio/ams/pkg/session"
)

// ProfilePresenter receives the logged-in user.
type ProfilePresenter interface {
	ErrorPresenter
	OnProfile(p models.Profile, c models.Claims)
	OnLoggedOut()
}

// Logouter ends the session.
type Logouter interface {
	Logout(ctx context.Context) error
}

// Profile shows the stored user and handles logout.
type Profile struct {
	store  *session.Store
	logout Logouter
	nav    auth.Navigator
	view   ProfilePresenter
}

// NewProfile creates a Profile controller. nav may be nil.
func NewProfile(store *session.Store, logout Logouter, nav auth.Navigator, view ProfilePresenter) *Profile {
	return &Profile{store: store, logout: logout, nav: nav, view: view}
}

// Load presents the stored profile and token claims.
func (p *Profile) Load(ctx context.Context) error {
	profile, claims, err := auth.Current(ctx, p.store)
	if err != nil {
		p.view.OnError(err)
		return err
	}
	p.view.OnProfile(profile, claims)
	return nil
}

// Logout clears the session and navigates to login.
func (p *Profile) Logout(ctx context.Context) error {
	if err := p.logout.Logout(ctx); err != nil {
		p.view.OnError(err)
		return err
	}
	p.view.OnLoggedOut()
	if p.nav != nil {
		p.nav.ToLogin()
	}
	return nil
}
