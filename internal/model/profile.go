package model

import "time"

type MemberProfile struct {
	ID         int64     `db:"id" json:"id"`
	Fullname   string    `db:"fullname" json:"fullname"`
	Email      *string   `db:"email" json:"email"`
	IdentityNo *string   `db:"identity_no" json:"identity_no"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

type SiteProfile struct {
	ID       int64  `db:"id" json:"id"`
	Sitename string `db:"sitename" json:"sitename"`
	RegionID *int64 `db:"region_id" json:"region_id"`
	PhaseID  *int64 `db:"phase_id" json:"phase_id"`
}

type Operator struct {
	ID       string  `db:"id" json:"id"`
	FullName *string `db:"full_name" json:"full_name"`
}
