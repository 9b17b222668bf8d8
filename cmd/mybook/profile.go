package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	u "github.com/gofrs/uuid/v5"
)

// profile is the identity the CLI impersonates when talking to the service directly.
type profile struct {
	UserID     string `json:"user_id"`
	Subscribed bool   `json:"subscribed"`
}

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "mybook")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "mybook")
}

func profilePath() string { return filepath.Join(cfgDir(), "profile.json") }

func saveProfile(p profile) error {
	if _, err := u.FromString(p.UserID); err != nil {
		return errors.New("user id must be a uuid")
	}
	if err := os.MkdirAll(cfgDir(), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(profilePath(), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}

func loadProfile() (profile, error) {
	b, err := os.ReadFile(profilePath())
	if err != nil {
		return profile{}, errors.New("no profile (run: mybook use -user <uuid>)")
	}
	var p profile
	if err := json.Unmarshal(b, &p); err != nil {
		return profile{}, err
	}
	if p.UserID == "" {
		return profile{}, errors.New("empty user id in profile")
	}
	return p, nil
}
