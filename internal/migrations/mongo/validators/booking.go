package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"staff_id",
			"date",
			"start_time",
			"duration_minutes",
			"status",
			"price",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},

			"staff_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"date": dateField,

			"start_time": timeOfDayField,

			"duration_minutes": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
				"maximum":  1440,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"confirmed",
					"cancelled",
				},
			},

			"price": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"cancelled_at": bson.M{
				"bsonType": "date",
			},

			"cancellation_reason": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},

			"refund_percent": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
				"maximum":  100,
			},

			"refund_amount": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},

			"rescheduled_from": bson.M{"bsonType": "string"},
			"rescheduled_to":   bson.M{"bsonType": "string"},
		},
	},
}
