package validators

import "go.mongodb.org/mongo-driver/bson"

var AppointmentValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"client_id",
			"service_id",
			"date",
			"start_time",
			"end_time",
			"status",
			"active",
			"is_recurring_instance",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"client_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"service_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"staff_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"date": bson.M{
				"bsonType": "string",
				"pattern":  datePattern,
			},

			"start_time": bson.M{
				"bsonType": "string",
				"pattern":  timePattern,
			},

			"end_time": bson.M{
				"bsonType": "string",
				"pattern":  timePattern,
			},

			"status": bson.M{
				"enum": []string{"pending", "confirmed", "rescheduled", "completed", "cancelled", "declined"},
			},

			"active": bson.M{
				"bsonType": "bool",
			},

			"recurring_id": bson.M{
				"bsonType": "string",
			},

			"is_recurring_instance": bson.M{
				"bsonType": "bool",
			},

			"notes": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
