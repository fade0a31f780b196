package session

import "github.com/newsox/newsox/internal/models"

// Normalize returns the canonical flat form of a member payload.
//
// The backend sometimes wraps the identity one level down, as in
// {"member": {...}, "profileImgUrl": "..."}. In that case the inner record is
// the identity and the outer profile image, when set, replaces the inner one.
// The result never carries a nested member, so Normalize(Normalize(u)) is
// equal to Normalize(u). The input is not modified.
func Normalize(u *models.User) *models.User {
	if u == nil {
		return nil
	}

	var out models.User
	if u.Member != nil {
		out = *u.Member
		if u.ProfileImgURL != "" {
			out.ProfileImgURL = u.ProfileImgURL
		}
	} else {
		out = *u
	}
	out.Member = nil

	return cloneUser(&out)
}

// hasIdentity reports whether a normalised record names anyone at all.
// {"member": null} and {} both decode to a zero User.
func hasIdentity(u *models.User) bool {
	return u != nil && (u.ID != 0 || u.Email != "" || u.Name != "")
}

func cloneUser(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	c := *u
	c.Level = cloneInt(u.Level)
	c.Experience = cloneInt(u.Experience)
	c.Member = cloneUser(u.Member)
	return &c
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
