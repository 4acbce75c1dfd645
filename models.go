package biopass

import (
	"time"

	"github.com/uptrace/bun"
)

// PersonType is the kind of person a record represents
type PersonType = string

const (
	// PersonStudent is a student, tracked for physical access only
	PersonStudent PersonType = "student"
	// PersonTeacher is a teacher, tracked for physical access only
	PersonTeacher PersonType = "teacher"
	// PersonEmployee is an administrative employee
	PersonEmployee PersonType = "employee"
	// PersonCoordinator is a unit coordinator
	PersonCoordinator PersonType = "coordinator"
	// PersonInspector is an access inspector
	PersonInspector PersonType = "inspector"
	// PersonVisitor is a registered visitor
	PersonVisitor PersonType = "visitor"
)

// SystemAccessAllowed reports whether a person type may authenticate against
// the web system at all. Students, teachers and visitors only ever pass
// through the physical readers.
func SystemAccessAllowed(t PersonType) bool {
	switch t {
	case PersonEmployee, PersonCoordinator, PersonInspector:
		return true
	}
	return false
}

// Person is the identity record. Credential fields are empty strings when
// unset; a person can authenticate only if SystemAccessHash or
// TemporaryPassword is present.
type Person struct {
	bun.BaseModel      `bun:"table:people,alias:per"`
	ID                 int64         `bun:"id,pk,autoincrement" json:"id,omitempty"`
	FullName           string        `bun:"full_name,notnull" json:"full_name,omitempty"`
	CPF                string        `bun:"cpf,notnull,unique" json:"cpf,omitempty"`
	Email              string        `bun:"email,notnull,unique" json:"email,omitempty"`
	Phone              string        `bun:"phone" json:"phone,omitempty"`
	Type               PersonType    `bun:"type,notnull" json:"type,omitempty"`
	BirthDate          *time.Time    `bun:"birth_date,nullzero" json:"birth_date,omitempty"`
	SystemAccessHash   string        `bun:"system_access_hash,nullzero" json:"-"`
	TemporaryPassword  string        `bun:"temporary_password,nullzero" json:"-"`
	PasswordResetAt    *time.Time    `bun:"password_reset_at,nullzero" json:"password_reset_at,omitempty"`
	RegistrationUnitID int64         `bun:"registration_unit_id" json:"registration_unit_id,omitempty"`
	RegistrationUnit   *Unit         `bun:"rel:belongs-to,join:registration_unit_id=id" json:"registration_unit,omitempty"`
	Employee           *Employee     `bun:"rel:has-one,join:id=person_id" json:"employee,omitempty"`
	ResetTokens        []*ResetToken `bun:"rel:has-many,join:id=person_id" json:"-"`
	CreatedAt          *time.Time    `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt          *time.Time    `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// PermissionLevel returns the numeric permission level derived from the
// person's employee role, 0 when the person carries no role.
func (p *Person) PermissionLevel() int {
	if p == nil || p.Employee == nil || p.Employee.Role == nil {
		return 0
	}
	return p.Employee.Role.PermissionLevel
}

// Employee is the employment record linked to a person. Active gates login
// for persons of type employee.
type Employee struct {
	bun.BaseModel `bun:"table:employees,alias:emp"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id,omitempty"`
	PersonID      int64      `bun:"person_id,notnull,unique" json:"person_id,omitempty"`
	RoleID        int64      `bun:"role_id" json:"role_id,omitempty"`
	Role          *Role      `bun:"rel:belongs-to,join:role_id=id" json:"role,omitempty"`
	Active        bool       `bun:"active,notnull,default:true" json:"active"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// Role carries the coarse permission level consumed by the authorization
// gate. Levels are assigned by the admin frontend, not computed here.
type Role struct {
	bun.BaseModel   `bun:"table:roles,alias:rol"`
	ID              int64  `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Name            string `bun:"name,notnull" json:"name,omitempty"`
	PermissionLevel int    `bun:"permission_level,notnull" json:"permission_level"`
}

// Unit is a campus/unit record referenced by people and access logs.
type Unit struct {
	bun.BaseModel `bun:"table:units,alias:unt"`
	ID            int64  `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Name          string `bun:"name,notnull" json:"name,omitempty"`
	Type          string `bun:"type" json:"type,omitempty"`
}

// ResetTokenTTL is how long a reset code stays redeemable.
const ResetTokenTTL = 30 * time.Minute

// ResetToken is a 6-digit password reset code. Tokens are never deleted;
// redeemed ones stay behind with Used set for audit.
type ResetToken struct {
	bun.BaseModel `bun:"table:reset_tokens,alias:rst"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id,omitempty"`
	PersonID      int64      `bun:"person_id,notnull" json:"person_id,omitempty"`
	Token         string     `bun:"token,notnull" json:"-"`
	Expiration    time.Time  `bun:"expiration,notnull" json:"expiration,omitempty"`
	Used          bool       `bun:"used,notnull,default:false" json:"used"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// Redeemable reports whether the token can still be spent at the given time.
func (t *ResetToken) Redeemable(now time.Time) bool {
	return t != nil && !t.Used && t.Expiration.After(now)
}

// EventType classifies access-log entries.
type EventType = string

const (
	// EventEntry marks a login / physical entry record
	EventEntry EventType = "entry"
	// EventExit marks an exit record
	EventExit EventType = "exit"
)

// AccessLogEntry is one row of the web access log. It is created at login
// and closed once at logout; LogoutTime and SessionDurationMinutes stay
// null until then.
type AccessLogEntry struct {
	bun.BaseModel          `bun:"table:web_access_logs,alias:wal"`
	ID                     int64      `bun:"id,pk,autoincrement" json:"id,omitempty"`
	PersonID               int64      `bun:"person_id,notnull" json:"person_id,omitempty"`
	UnitID                 int64      `bun:"unit_id" json:"unit_id,omitempty"`
	EventType              EventType  `bun:"event_type,notnull" json:"event_type,omitempty"`
	LoginTime              time.Time  `bun:"login_time,notnull" json:"login_time,omitempty"`
	LogoutTime             *time.Time `bun:"logout_time,nullzero" json:"logout_time,omitempty"`
	SessionDurationMinutes *int64     `bun:"session_duration_minutes,nullzero" json:"session_duration_minutes,omitempty"`
}
