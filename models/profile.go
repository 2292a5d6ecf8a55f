package models

// Profile is the editable account profile of the signed-in user.
type Profile struct {
	Username     string  `json:"username"`
	Email        string  `json:"email"`
	FullName     *string `json:"fullname"`
	Age          *string `json:"age"`
	Place        *string `json:"place"`
	Gender       *string `json:"gender"`
	Language     *string `json:"language"`
	Phone        *string `json:"phone"`
	ProfileImage *string `json:"profile_image"`
}

// Field returns the current value of a profile field by its wire name.
func (p Profile) Field(name string) (string, bool) {
	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}
	switch name {
	case "username":
		return p.Username, true
	case "email":
		return p.Email, true
	case "fullname":
		return deref(p.FullName), true
	case "age":
		return deref(p.Age), true
	case "place":
		return deref(p.Place), true
	case "gender":
		return deref(p.Gender), true
	case "language":
		return deref(p.Language), true
	case "phone":
		return deref(p.Phone), true
	}
	return "", false
}

type PasswordChange struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}
