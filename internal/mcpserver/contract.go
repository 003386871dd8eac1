package mcpserver

// RecordFormatContract describes the record types and their rules for LLM
// consumers creating or updating records.
const RecordFormatContract = `# Travelrec Record Format

Three record types are stored, one JSON file each. Every record has a
positive integer ` + "`id`" + `, unique within its type. Omit ` + "`id`" + ` (or pass 0) to get the next
number; automatically assigned ids are never handed out twice. An explicit
` + "`id`" + ` is accepted when no record of that type currently uses it.

## client

| field | rules |
|---|---|
| name | REQUIRED, at most 100 characters |
| address_line_1, address_line_2, address_line_3 | optional |
| city, state, zip_code | optional |
| country | REQUIRED |
| phone_number | optional; digits, spaces and ` + "`+ ( ) - .`" + `, 5 to 25 characters |
| email | optional; must be a valid address |

## airline

| field | rules |
|---|---|
| company_name | REQUIRED |
| phone_number, email | optional, same rules as for clients |
| fleet_size | optional, not negative |

## flight

| field | rules |
|---|---|
| client_id | REQUIRED; must be an existing client |
| airline_id | REQUIRED; must be an existing airline |
| date | REQUIRED departure time, e.g. ` + "`2025-03-15 19:04`" + ` or RFC 3339 |
| arrival | optional; after date. Send ` + "`clear_arrival: true`" + ` to remove it |
| start_city, end_city | REQUIRED; must differ |
| capacity | optional, not negative |

## Rules

1. A client's bookings are the flights whose ` + "`client_id`" + ` is that client.
2. Clients and airlines referenced by any flight cannot be deleted. Delete or
   reassign the flights first.
3. update_record changes only the fields given; omitted fields keep their value.
`
