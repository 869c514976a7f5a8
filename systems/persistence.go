package systems

import (
	"encoding/json"

	"github.com/automoto/retrorealms/logging"
	"github.com/quasilyte/gdata"
)

// SavedLogin is what the client remembers between runs. The password is never stored.
type SavedLogin struct {
	ServerAddress string `json:"serverAddress"`
	Username      string `json:"username"`
}

const loginItem = "login"

var gdataManager *gdata.Manager

// InitPersistence opens the per-user data directory.
func InitPersistence() error {
	m, err := gdata.Open(gdata.Config{
		AppName: "retrorealms",
	})
	if err != nil {
		logging.L().Warnw("could not initialize persistence", "error", err)
		return err
	}
	gdataManager = m
	return nil
}

// LoadLogin returns the saved login, or nil when there is none.
func LoadLogin() (*SavedLogin, error) {
	if gdataManager == nil {
		return nil, nil
	}

	data, err := gdataManager.LoadItem(loginItem)
	if err != nil {
		logging.L().Warnw("could not load saved login", "error", err)
		return nil, nil
	}
	if len(data) == 0 {
		return nil, nil
	}

	var saved SavedLogin
	if err := json.Unmarshal(data, &saved); err != nil {
		logging.L().Warnw("could not parse saved login", "error", err)
		return nil, err
	}
	return &saved, nil
}

// SaveLogin remembers the server and account used for the current session.
func SaveLogin(s SavedLogin) error {
	if gdataManager == nil {
		return nil
	}

	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := gdataManager.SaveItem(loginItem, data); err != nil {
		logging.L().Warnw("could not save login", "error", err)
		return err
	}
	return nil
}
