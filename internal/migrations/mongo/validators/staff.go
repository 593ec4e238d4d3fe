package validators

import "go.mongodb.org/mongo-driver/bson"

var workDay = bson.M{
	"bsonType": "object",
	"required": []string{"is_working", "start_time", "end_time"},
	"properties": bson.M{
		"is_working": bson.M{"bsonType": "bool"},
		"start_time": timeOfDayField,
		"end_time":   timeOfDayField,
	},
}

var StaffValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"weekly_schedule", "updated_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":  bson.M{"bsonType": "string", "minLength": 1, "maxLength": 64},
			"name": bson.M{"bsonType": "string", "maxLength": 100},
			"weekly_schedule": bson.M{
				"bsonType":             "object",
				"additionalProperties": workDay,
			},
			"vacations": bson.M{
				"bsonType": []string{"array", "null"},
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"start_date", "end_date"},
					"properties": bson.M{
						"start_date": dateField,
						"end_date":   dateField,
						"reason":     bson.M{"bsonType": "string", "maxLength": 200},
					},
				},
			},
			"extra_work_days": bson.M{
				"bsonType": []string{"array", "null"},
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"date", "start_time", "end_time"},
					"properties": bson.M{
						"date":       dateField,
						"start_time": timeOfDayField,
						"end_time":   timeOfDayField,
					},
				},
			},
			"updated_at": bson.M{"bsonType": "date"},
		},
	},
}
