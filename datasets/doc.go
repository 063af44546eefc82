// Package datasets names the tables the ingestion pipeline loads and where
// in a report each one is found.
//
// Two datasets are built in:
//
//   - top_industries: the single-industry summary, labelled by rank with
//     seven numeric columns
//   - all_india_stats: the principal characteristics table, labelled by
//     characteristic with one column for each of the ten leading industries
//
// Further datasets are defined in YAML and loaded with [LoadFile]:
//
//	datasets:
//	  - name: state_summary
//	    page: 4
//	    table: state_summary
//	    label_column: state
//	    header_tokens: [State]
//	    columns:
//	      - {name: factories, title: Factories}
//	      - {name: output, title: Output}
package datasets
