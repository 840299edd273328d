package validators

import "go.mongodb.org/mongo-driver/bson"

var OrderValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"order_number",
			"service",
			"status",
			"payment_method",
			"total_amount",
			"customer_email",
			"session_id",
			"travelers",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"order_number": bson.M{
				"bsonType":  "string",
				"minLength": 7,
				"maxLength": 30,
			},

			"service": bson.M{
				"enum": []string{"flight-reservation", "hotel-booking", "travel-insurance"},
			},

			"status": bson.M{
				"enum": []string{"pending", "paid", "cancelled"},
			},

			"payment_method": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 40,
			},

			"total_amount": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"customer_email": bson.M{
				"bsonType": "string",
				"pattern":  "^.+@.+$",
			},

			"session_id": bson.M{
				"bsonType": "string",
			},

			"travelers": bson.M{
				"bsonType": "array",
				"minItems": 1,
				"maxItems": 20,
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"first_name", "last_name", "date_of_birth", "nationality"},
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
