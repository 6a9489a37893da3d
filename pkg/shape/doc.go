// Package shape declares the structure of API values: primitives, enums,
// lists, maps, unions and models (field tables). Shapes are immutable once
// constructed and are meant to be defined once, at package initialisation, and
// shared by every conversion.
//
// Typical declaration:
//
//	var Role = shape.MustEnum("Role", "system", "user", "assistant")
//
//	var Message = shape.MustModel("Message",
//		shape.Required("content", shape.String),
//		shape.Required("role", Role),
//	)
package shape
