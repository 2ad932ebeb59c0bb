package validators

import "go.mongodb.org/mongo-driver/bson"

var WaitlistEntryValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"client_id",
			"service_id",
			"priority",
			"status",
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

			"preferred_date": bson.M{
				"bsonType": "string",
				"pattern":  datePattern,
			},

			"preferred_time": bson.M{
				"bsonType": "string",
				"pattern":  timePattern,
			},

			"priority": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
				"maximum":  100,
			},

			"status": bson.M{
				"enum": []string{"active", "notified", "converted", "cancelled"},
			},

			"notified_at": bson.M{
				"bsonType": "date",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var SlotLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"owner",
			"expires_at",
		},
		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},

			"owner": bson.M{
				"bsonType": "string",
			},

			"expires_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
