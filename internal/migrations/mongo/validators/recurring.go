package validators

import "go.mongodb.org/mongo-driver/bson"

var RecurringRuleValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"client_id",
			"service_id",
			"pattern",
			"start_date",
			"start_time",
			"end_time",
			"is_active",
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

			"pattern": bson.M{
				"enum": []string{"daily", "weekly", "biweekly", "monthly"},
			},

			"recurrence_day": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
				"maximum":  31,
			},

			"start_date": bson.M{
				"bsonType": "string",
				"pattern":  datePattern,
			},

			"end_date": bson.M{
				"bsonType": "string",
				"pattern":  datePattern,
			},

			"max_occurrences": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},

			"start_time": bson.M{
				"bsonType": "string",
				"pattern":  timePattern,
			},

			"end_time": bson.M{
				"bsonType": "string",
				"pattern":  timePattern,
			},

			"is_active": bson.M{
				"bsonType": "bool",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
