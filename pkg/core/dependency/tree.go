package dependency

import (
	"iter"
	"slices"

	"github.com/matzehuels/scantower/pkg/core/model"
)

// TreeNavigator navigates projects that store their dependencies as explicit
// trees of [model.PackageReference] values in [model.Project.Scopes].
// Children are visited in the order the package manager produced them.
type TreeNavigator struct{}

// ScopeNames returns the sorted names of the project's scopes.
func (TreeNavigator) ScopeNames(project *model.Project) []string {
	names := make([]string, 0, len(project.Scopes))
	for _, s := range project.Scopes {
		names = append(names, s.Name)
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// DirectDependencies yields the roots of the named scope.
func (TreeNavigator) DirectDependencies(project *model.Project, scope string) (iter.Seq[Node], bool) {
	s, ok := project.Scope(scope)
	if !ok {
		return emptySeq, false
	}
	return referenceSeq(s.Dependencies), true
}

// TreeNode wraps a package reference as a [Node]. Occurrences are identified
// by the reference pointer.
type TreeNode struct {
	ref *model.PackageReference
}

// NewTreeNode returns the node for ref.
func NewTreeNode(ref *model.PackageReference) TreeNode { return TreeNode{ref: ref} }

func (n TreeNode) ID() model.Identifier { return n.ref.ID }

func (n TreeNode) Linkage() model.PackageLinkage { return n.ref.Linkage.OrDefault() }

func (n TreeNode) Issues() []model.Issue { return n.ref.Issues }

func (n TreeNode) Dependencies() iter.Seq[Node] { return referenceSeq(n.ref.Dependencies) }

// Reference returns the wrapped package reference.
func (n TreeNode) Reference() *model.PackageReference { return n.ref }

func referenceSeq(refs []*model.PackageReference) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for _, r := range refs {
			if r == nil {
				continue
			}
			if !yield(TreeNode{ref: r}) {
				return
			}
		}
	}
}
