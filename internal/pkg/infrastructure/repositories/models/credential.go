package models

import (
	"gorm.io/gorm"
)

//Credential is the database model to store Sigfox API passwords in our database
type Credential struct {
	gorm.Model
	Key      string `gorm:"column:credential_key;unique;not null"`
	Password string
}
