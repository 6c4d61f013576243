package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"
)

const (
  RoleStudent = "student"
  RoleTeacher = "teacher"
  RoleAdmin   = "admin"
  RolePerson  = "person"

  // UnspecifiedTH is the default shown for demographic fields the user has
  // not filled in yet.
  UnspecifiedTH = "ยังไม่ระบุ"
)

// ValidRole reports whether role is one of the roles the portal knows about.
func ValidRole(role string) bool {
  switch role {
  case RoleStudent, RoleTeacher, RoleAdmin, RolePerson:
    return true
  }
  return false
}

type User struct {
  gorm.Model
  ID                  uuid.UUID                 `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  StudentID           string                    `gorm:"uniqueIndex;not null;column:student_id" json:"studentId"`
  Prefix              string                    `gorm:"column:prefix" json:"prefix,omitempty"`
  Email               string                    `gorm:"uniqueIndex;not null;column:email" json:"email"`
  PhoneNumber         *string                   `gorm:"column:phone_number" json:"phoneNumber,omitempty"`
  Password            string                    `gorm:"not null;column:password" json:"-"`
  FirstName           string                    `gorm:"not null;column:first_name" json:"firstName"`
  LastName            string                    `gorm:"not null;column:last_name" json:"lastName"`
  Birthdate           string                    `gorm:"column:birthdate" json:"birthdate,omitempty"`
  Age                 int                       `gorm:"column:age" json:"age,omitempty"`
  Role                string                    `gorm:"not null;default:'student';column:role" json:"role"`
  Faculty             string                    `gorm:"column:faculty" json:"faculty"`
  Major               string                    `gorm:"column:major" json:"major"`
  YearLevel           string                    `gorm:"column:year_level" json:"yearLevel"`
  AvatarBucketKey     string                    `gorm:"column:avatar_bucket_key" json:"avatarBucketKey"`
  AvatarURL           string                    `gorm:"column:avatar_url" json:"avatarURL"`

  CreatedAt           time.Time                 `gorm:"not null;default:now()" json:"createdAt"`
  UpdatedAt           time.Time                 `gorm:"not null;default:now()" json:"updatedAt"`
}

func (User) TableName() string {
  return "user"
}
