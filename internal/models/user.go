// server/internal/models/user.go
package models

type User struct {
	Email       string `bson:"email" json:"email"`
	Name        string `bson:"name" json:"name"`
	Password    string `bson:"password" json:"-"`
	Role        string `bson:"role" json:"role"`
	CoopID      string `bson:"coopID" json:"coopID"`
	Status      string `bson:"status" json:"status"`
	PrincipalID string `bson:"principalID" json:"principalID"`
}
