// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"fmt"
)

const unknownBuildValue = "N/A"

// AppBuildInfo is the linker-injected identity of a client binary. It is
// printed by `notes version` and served on /version while watching.
type AppBuildInfo struct {
	version string
	date    string
	commit  string
}

// NewAppBuildInfo fills blank values with "N/A".
func NewAppBuildInfo(version, date, commit string) AppBuildInfo {
	info := AppBuildInfo{version: version, date: date, commit: commit}
	for _, v := range []*string{&info.version, &info.date, &info.commit} {
		if *v == "" {
			*v = unknownBuildValue
		}
	}
	return info
}

func (a AppBuildInfo) BuildVersion() string { return a.version }
func (a AppBuildInfo) BuildDate() string    { return a.date }
func (a AppBuildInfo) BuildCommit() string  { return a.commit }

func (a AppBuildInfo) String() string {
	return fmt.Sprintf("%s (%s, built %s)", a.version, a.commit, a.date)
}

func (a AppBuildInfo) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Version string `json:"version"`
		Date    string `json:"date"`
		Commit  string `json:"commit"`
	}{a.version, a.date, a.commit})
}
