package orders

import "strconv"

const (
	TopicProductChanged = "catalog.product.changed"
	TopicOrderChanged   = "catalog.order.changed"
)

// TopicFor returns the change topic of a resource.
func TopicFor(resource string) string {
	if resource == ResourceOrder {
		return TopicOrderChanged
	}
	return TopicProductChanged
}

// Partition key = resource id, so events of one resource stay ordered.
func PartitionKey(id int64) []byte { return []byte(strconv.FormatInt(id, 10)) }
