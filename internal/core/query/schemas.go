package query

import "golang.org/x/text/language"

var usageField = Field{Values: []string{"historical", "promo", "both"}, Combined: "both"}

var BundleSchema = Schema{
	Fields: map[string]Field{
		"usage":  usageField,
		"status": {Values: []string{"draft", "published", "archived"}},
		"os":     {Values: []string{"android", "ios", "windows", "webgl"}},
	},
	Locale: language.Korean,
}

var AssetSchema = Schema{
	Fields: map[string]Field{
		"usage":  usageField,
		"status": {Values: []string{"draft", "published", "archived"}},
	},
	Locale: language.Korean,
}

var (
	ComplaintSchema = DefaultVocabulary.ComplaintSchema()
	EchoSchema      = DefaultVocabulary.EchoSchema()
)
