package validators

import "go.mongodb.org/mongo-driver/bson"

const (
	datePattern      = `^[0-9]{4}-[0-9]{2}-[0-9]{2}$`
	timeOfDayPattern = `^([01][0-9]|2[0-3]):[0-5][0-9]$|^24:00$`
)

var (
	dateField      = bson.M{"bsonType": "string", "pattern": datePattern}
	timeOfDayField = bson.M{"bsonType": "string", "pattern": timeOfDayPattern}
)
