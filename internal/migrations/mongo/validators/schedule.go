package validators

import "go.mongodb.org/mongo-driver/bson"

const (
	timePattern = `^([01][0-9]|2[0-3]):[0-5][0-9]$`
	datePattern = `^[0-9]{4}-[0-9]{2}-[0-9]{2}$`
)

var WeeklyScheduleValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"staff_id",
			"day_of_week",
			"open_start",
			"open_end",
			"available",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"staff_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"day_of_week": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
				"maximum":  6,
			},

			"open_start": bson.M{
				"bsonType": "string",
				"pattern":  timePattern,
			},

			"open_end": bson.M{
				"bsonType": "string",
				"pattern":  timePattern,
			},

			"available": bson.M{
				"bsonType": "bool",
			},

			"break_start": bson.M{
				"bsonType": "string",
				"pattern":  timePattern,
			},

			"break_end": bson.M{
				"bsonType": "string",
				"pattern":  timePattern,
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var AvailabilityOverrideValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"staff_id",
			"date",
			"available",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"staff_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"date": bson.M{
				"bsonType": "string",
				"pattern":  datePattern,
			},

			"available": bson.M{
				"bsonType": "bool",
			},

			"start_time": bson.M{
				"bsonType": "string",
				"pattern":  timePattern,
			},

			"end_time": bson.M{
				"bsonType": "string",
				"pattern":  timePattern,
			},

			"reason": bson.M{
				"bsonType":  "string",
				"maxLength": 200,
			},
		},
	},
}

var TimeOffValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"staff_id",
			"start_date",
			"end_date",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"staff_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"start_date": bson.M{
				"bsonType": "string",
				"pattern":  datePattern,
			},

			"end_date": bson.M{
				"bsonType": "string",
				"pattern":  datePattern,
			},

			"status": bson.M{
				"enum": []string{"pending", "approved", "rejected", "cancelled"},
			},

			"reason": bson.M{
				"bsonType":  "string",
				"maxLength": 200,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
