// Package schemafile declares record schemas in YAML files.
//
// A file lists schemas with their fields, field options and handlers:
//
//	schemas:
//	  - name: Endpoint
//	    fields:
//	      - {name: host, type: str}
//	      - {name: port, type: int, default: 8080}
//	      - name: url
//	        type: str
//	        depends_on: [host, port]
//	        compute: "http://{{.host}}:{{.port}}"
//	  - name: Service
//	    type_handlers: {str: trim}
//	    fields:
//	      - {name: endpoints, type: "list[Endpoint]"}
//	      - {name: tags, type: "set[str]", nullable: true, default: null}
//
// Types use the typedesc expression syntax and may name other schemas of
// the same file. Schemas are built so that every schema comes after the
// schemas it extends or references; cycles are rejected.
//
// Field handlers are either a compute template, rendered against the
// already processed fields, or a handler name from a Catalog.
package schemafile
