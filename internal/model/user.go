package model

import "time"

// User represents a gate operator account as stored in the `users`
// table. Guards staff the checkpoint in shifts; admins manage accounts
// and review sessions. Passwords are stored as bcrypt hashes only.
//
// Fields:
//  ID           – primary key identifier.
//  Username     – unique login name.
//  PasswordHash – bcrypt hashed password.
//  Role         – "guard" or "admin".
//  Shift        – guard duty shift ("morning", "evening", "night");
//                 null for admins.
//  CreatedAt    – timestamp of creation.
type User struct {
	ID           uint64
	Username     string
	PasswordHash string
	Role         string
	Shift        *string
	CreatedAt    time.Time
}

// Session models one login of a gate operator. LogoutTime is null while
// the session is active and is set once on logout, mirroring the
// open/closed shape of an Entry.
//
// Fields:
//  ID         – primary key identifier.
//  Username   – operator who logged in.
//  SessionID  – opaque identifier issued at login, used to close the
//               matching session on logout.
//  IPAddress  – remote address of the kiosk or browser.
//  LoginTime  – when the session started.
//  LogoutTime – when the session ended (nullable).
type Session struct {
	ID         uint64     `json:"id"`
	Username   string     `json:"username"`
	SessionID  string     `json:"session_id"`
	IPAddress  string     `json:"ip_address"`
	LoginTime  time.Time  `json:"login_time"`
	LogoutTime *time.Time `json:"logout_time"`
}
