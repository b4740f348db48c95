package db

import "strconv"

const (
	tokenKey       = "token"
	lastProjectKey = "last_project_id"
)

// Token returns the persisted auth token, or "" when signed out
func (db *DB) Token() (string, error) {
	return db.GetSetting(tokenKey)
}

// SetToken persists the auth token
func (db *DB) SetToken(token string) error {
	return db.SetSetting(tokenKey, token)
}

// ClearToken removes the persisted auth token
func (db *DB) ClearToken() error {
	return db.DeleteSetting(tokenKey)
}

// LastProjectID returns the project that was open when the app last exited, or 0
func (db *DB) LastProjectID() int64 {
	value, err := db.GetSetting(lastProjectKey)
	if err != nil || value == "" {
		return 0
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// SetLastProjectID remembers the open project; 0 forgets it
func (db *DB) SetLastProjectID(id int64) error {
	if id == 0 {
		return db.DeleteSetting(lastProjectKey)
	}
	return db.SetSetting(lastProjectKey, strconv.FormatInt(id, 10))
}
