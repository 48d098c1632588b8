package auth

import (
	"github.com/ParticipaSonora/PS-Backend/internal/db"
	"gorm.io/gorm"
)

type userEdge struct {
	ID         uint
	IDSuperior *uint
}

// Descendants returns the transitive closure of the leader-of relation for
// the given principal, inclusive of the principal itself. Only active users
// participate. The relation is intended acyclic, but corrupted data must not
// hang the request, so traversal is an iterative BFS with a visited set.
// An unknown id yields just the singleton.
func Descendants(conn *gorm.DB, principalID uint) []uint {
	var edges []userEdge
	if err := conn.Model(&User{}).
		Where("activo = ?", true).
		Where("id_superior IS NOT NULL").
		Select("id", "id_superior").
		Find(&edges).Error; err != nil {
		return []uint{principalID}
	}

	children := make(map[uint][]uint, len(edges))
	for _, e := range edges {
		children[*e.IDSuperior] = append(children[*e.IDSuperior], e.ID)
	}

	visited := map[uint]bool{principalID: true}
	out := []uint{principalID}
	queue := []uint{principalID}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, child := range children[cur] {
			if visited[child] {
				continue
			}
			visited[child] = true
			out = append(out, child)
			queue = append(queue, child)
		}
	}
	return out
}

// DescendantsDefault uses the global connection.
func DescendantsDefault(principalID uint) []uint {
	return Descendants(db.DB, principalID)
}
