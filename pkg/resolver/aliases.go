package resolver

// staticAliases maps common spellings, informal references and parent-company names
// to company identifiers. Catalog-derived keys take precedence over these.
//
// Parent companies resolve to their data-platform product: "google" is BigQuery,
// "amazon"/"aws" is Redshift and "microsoft" is Azure Synapse.
var staticAliases = map[string]string{
	"snow":          "snowflake",
	"snowflake":     "snowflake",
	"snowflake inc": "snowflake",
	"databricks":    "databricks",

	"bigquery":        "bigquery",
	"google bigquery": "bigquery",
	"google":          "bigquery",
	"redshift":        "redshift",
	"amazon redshift": "redshift",
	"aws redshift":    "redshift",
	"amazon":          "redshift",
	"aws":             "redshift",
	"azure synapse":   "azure_synapse",
	"synapse":         "azure_synapse",
	"microsoft":       "azure_synapse",

	"teradata":             "teradata",
	"teradata corporation": "teradata",
	"cloudera":             "cloudera",
	"motherduck":           "motherduck",
	"mother duck":          "motherduck",
	"firebolt":             "firebolt",
	"clickhouse":           "clickhouse",
	"starrocks":            "starrocks",
	"star rocks":           "starrocks",
	"neon":                 "neon",
	"supabase":             "supabase",

	"c3 ai":                 "c3ai",
	"c3ai":                  "c3ai",
	"c3":                    "c3ai",
	"palantir":              "palantir",
	"palantir technologies": "palantir",
	"dataiku":               "dataiku",
	"datarobot":             "datarobot",
	"data robot":            "datarobot",
	"h2o":                   "h2o_ai",
	"h2o ai":                "h2o_ai",
	"h2o.ai":                "h2o_ai",
	"scale ai":              "scale_ai",
	"scale":                 "scale_ai",
	"wandb":                 "wandb",
	"weights and biases":    "wandb",
	"weights & biases":      "wandb",
	"w&b":                   "wandb",
	"hugging face":          "huggingface",
	"huggingface":           "huggingface",

	"fivetran":         "fivetran",
	"dbt":              "dbt_labs",
	"dbt labs":         "dbt_labs",
	"airbyte":          "airbyte",
	"informatica":      "informatica",
	"informatica inc":  "informatica",
	"talend":           "talend",
	"qlik":             "talend",
	"matillion":        "matillion",

	"monte carlo":        "monte_carlo",
	"montecarlo":         "monte_carlo",
	"atlan":              "atlan",
	"alation":            "alation",
	"great expectations": "great_expectations",
	"collibra":           "collibra",

	"pinecone":      "pinecone",
	"weaviate":      "weaviate",
	"chroma":        "chroma",
	"zilliz":        "zilliz",
	"milvus":        "zilliz",
	"zilliz milvus": "zilliz",
	"qdrant":        "qdrant",
}

// nameSuffixes are stripped from canonical names and inputs to form extra keys.
var nameSuffixes = []string{" inc", " corporation", " technologies"}
