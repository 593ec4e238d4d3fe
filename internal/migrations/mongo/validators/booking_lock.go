package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"owner", "created_at", "expires_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":        bson.M{"bsonType": "string"},
			"owner":      bson.M{"bsonType": "string"},
			"created_at": bson.M{"bsonType": "date"},
			"expires_at": bson.M{"bsonType": "date"},
		},
	},
}
