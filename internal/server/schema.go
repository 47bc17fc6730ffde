package server

import "github.com/santhosh-tekuri/jsonschema/v5"

// Request schema for POST /extract: an OCR document with word-level boxes.
// Validated before decoding so malformed payloads fail with a 400 instead of
// surfacing as zero-valued fields deep in the core.
const ocrRequestSchemaJSON = `{
  "type": "object",
  "required": ["ocr"],
  "properties": {
    "ocr": {
      "type": "object",
      "required": ["doc_id", "text", "words", "confidence"],
      "properties": {
        "doc_id": {"type": "string"},
        "text": {"type": "string"},
        "confidence": {"type": "number"},
        "words": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["text", "confidence", "box"],
            "properties": {
              "text": {"type": "string"},
              "confidence": {"type": "number"},
              "box": {
                "type": "array",
                "minItems": 4,
                "maxItems": 4,
                "items": {
                  "type": "array",
                  "minItems": 2,
                  "maxItems": 2,
                  "items": {"type": "number"}
                }
              }
            }
          }
        }
      }
    }
  }
}`

var ocrRequestSchema = jsonschema.MustCompileString("ocr_request.json", ocrRequestSchemaJSON)
